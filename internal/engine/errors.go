package engine

import (
	"fmt"
)

// PreconditionError reports a violated input contract. Nothing reaches the
// store when one is returned.
type PreconditionError struct {
	Field  string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed on %s: %s", e.Field, e.Reason)
}

func precondition(field, reason string) *PreconditionError {
	return &PreconditionError{Field: field, Reason: reason}
}

// PartialSubmissionError reports that the attachment phase of a submission
// failed after the report document was already created. The document
// persists with empty mediaUrls; the pipeline does not roll it back.
type PartialSubmissionError struct {
	ReportID string
	Err      error
}

func (e *PartialSubmissionError) Error() string {
	return fmt.Sprintf("report %s created but attachments failed: %v", e.ReportID, e.Err)
}

func (e *PartialSubmissionError) Unwrap() error {
	return e.Err
}

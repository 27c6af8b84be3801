package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/truckersblacklist/blacklist_api/internal/store"
	"github.com/truckersblacklist/blacklist_api/util"
)

type SubmitReportInput struct {
	CompanyName      string `validate:"required"`
	IssueDescription string `validate:"required"`
	ReporterName     string `validate:"required"`
	ReporterContact  string `validate:"required"`
	Attachments      []Attachment
}

type Attachment struct {
	Name string
	Data io.Reader
}

// SubmitReport runs the submission pipeline:
//
//  1. create the report document with empty mediaUrls and zeroed votes,
//  2. upload every attachment concurrently,
//  3. patch the document with the full locator list in one write.
//
// The steps are strictly ordered because the upload paths need the created
// document's id. If any upload fails the document from step 1 stays in the
// store with empty mediaUrls and the caller gets a *PartialSubmissionError;
// there is no rollback.
func (e *Engine) SubmitReport(ctx context.Context, sess *Session, in SubmitReportInput) (string, error) {
	if !sess.HasUser() {
		return "", precondition("user_id", "no interactive session")
	}

	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.IssueDescription = strings.TrimSpace(in.IssueDescription)
	in.ReporterName = strings.TrimSpace(in.ReporterName)
	in.ReporterContact = strings.TrimSpace(in.ReporterContact)

	if err := util.ValidateStruct(in); err != nil {
		field := "input"
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return "", precondition(field, "required field is missing or empty")
	}
	if len(in.Attachments) == 0 {
		return "", precondition("attachments", "at least one photo or video is required")
	}

	id, err := e.Store.Create(ctx, store.ReportsCollection, map[string]interface{}{
		store.FieldUserID:           sess.UserID,
		store.FieldCompanyName:      in.CompanyName,
		store.FieldIssueDescription: in.IssueDescription,
		store.FieldReporterName:     in.ReporterName,
		store.FieldReporterContact:  in.ReporterContact,
		store.FieldTimestamp:        store.ServerTimestamp,
		store.FieldMediaURLs:        []string{},
		store.FieldUpvotes:          0,
		store.FieldDownvotes:        0,
		store.FieldUpvotedBy:        []string{},
		store.FieldDownvotedBy:      []string{},
	})
	if err != nil {
		return "", err
	}

	locators := make([]string, len(in.Attachments))
	g, gctx := errgroup.WithContext(ctx)
	for i, att := range in.Attachments {
		i, att := i, att
		g.Go(func() error {
			locator, err := e.Blobs.Upload(gctx, fmt.Sprintf("reports/%s/media/%s", id, att.Name), att.Data)
			if err != nil {
				return errors.Wrapf(err, "uploading %s", att.Name)
			}
			locators[i] = locator
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return id, &PartialSubmissionError{ReportID: id, Err: err}
	}

	err = e.Store.Patch(ctx, store.ReportsCollection, id, map[string]interface{}{
		store.FieldMediaURLs: locators,
	})
	if err != nil {
		return id, &PartialSubmissionError{ReportID: id, Err: err}
	}
	return id, nil
}

// SendMessage appends one chat message. A single write creates it, so chat
// has no partial-failure window.
func (e *Engine) SendMessage(ctx context.Context, sess *Session, text string) (string, error) {
	if !sess.HasUser() {
		return "", precondition("user_id", "no interactive session")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", precondition("text", "message text is empty")
	}

	return e.Store.Create(ctx, store.ChatCollection, map[string]interface{}{
		store.FieldText:      text,
		store.FieldUserID:    sess.UserID,
		store.FieldTimestamp: store.ServerTimestamp,
	})
}

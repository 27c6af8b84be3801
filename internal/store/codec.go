package store

import (
	"time"

	"github.com/truckersblacklist/blacklist_api/internal/model"
)

// Wire field names, shared by every backend.
const (
	FieldUserID           = "userId"
	FieldCompanyName      = "companyName"
	FieldIssueDescription = "issueDescription"
	FieldReporterName     = "reporterName"
	FieldReporterContact  = "reporterContact"
	FieldTimestamp        = "timestamp"
	FieldMediaURLs        = "mediaUrls"
	FieldUpvotes          = "upvotes"
	FieldDownvotes        = "downvotes"
	FieldUpvotedBy        = "upvotedBy"
	FieldDownvotedBy      = "downvotedBy"
	FieldText             = "text"
)

// DecodeReport materializes a Report from a raw document. Missing or
// malformed voter sets and counts decode as empty set / zero so a single
// bad document never fails the whole view.
func DecodeReport(doc Document) model.Report {
	return model.Report{
		ID:               doc.ID,
		UserID:           asString(doc.Fields[FieldUserID]),
		CompanyName:      asString(doc.Fields[FieldCompanyName]),
		IssueDescription: asString(doc.Fields[FieldIssueDescription]),
		ReporterName:     asString(doc.Fields[FieldReporterName]),
		ReporterContact:  asString(doc.Fields[FieldReporterContact]),
		CreatedAt:        asTime(doc.Fields[FieldTimestamp]),
		MediaURLs:        asStringSlice(doc.Fields[FieldMediaURLs]),
		Upvotes:          asInt(doc.Fields[FieldUpvotes]),
		Downvotes:        asInt(doc.Fields[FieldDownvotes]),
		UpvotedBy:        asStringSlice(doc.Fields[FieldUpvotedBy]),
		DownvotedBy:      asStringSlice(doc.Fields[FieldDownvotedBy]),
	}
}

func DecodeChatMessage(doc Document) model.ChatMessage {
	return model.ChatMessage{
		ID:        doc.ID,
		UserID:    asString(doc.Fields[FieldUserID]),
		Text:      asString(doc.Fields[FieldText]),
		CreatedAt: asTime(doc.Fields[FieldTimestamp]),
	}
}

// The backends surface different concrete types for the same wire value:
// Firestore hands back time.Time, int64 and []interface{}, the jsonb
// backend hands back RFC3339 strings and float64. The coercions below
// flatten those differences.

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asTime(v interface{}) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asStringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		out := make([]string, len(s))
		copy(out, s)
		return out
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}

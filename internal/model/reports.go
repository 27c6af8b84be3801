package model

import (
	"time"
)

// Report is a single filed complaint about a company or broker.
// CreatedAt is nil between document creation and the store acknowledging
// the server timestamp.
type Report struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	CompanyName      string     `json:"company_name"`
	IssueDescription string     `json:"issue_description"`
	ReporterName     string     `json:"reporter_name"`
	ReporterContact  string     `json:"reporter_contact"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	MediaURLs        []string   `json:"media_urls"`
	Upvotes          int        `json:"upvotes"`
	Downvotes        int        `json:"downvotes"`
	UpvotedBy        []string   `json:"upvoted_by"`
	DownvotedBy      []string   `json:"downvoted_by"`
}

func (r Report) HasUpvoted(userID string) bool {
	return containsID(r.UpvotedBy, userID)
}

func (r Report) HasDownvoted(userID string) bool {
	return containsID(r.DownvotedBy, userID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type CreateReportRequest struct {
	CompanyName      string `json:"company_name" validate:"required"`
	IssueDescription string `json:"issue_description" validate:"required"`
	ReporterName     string `json:"reporter_name" validate:"required"`
	ReporterContact  string `json:"reporter_contact" validate:"required"`
}

type VoteRequest struct {
	VoteType string `json:"vote_type" validate:"required,oneof=UPVOTE DOWNVOTE"`
}

package engine

import (
	"context"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/internal/store"
)

type VoteKind string

const (
	Upvote   VoteKind = "UPVOTE"
	Downvote VoteKind = "DOWNVOTE"
)

// ToggleVote applies a vote toggle computed from the caller's last-observed
// snapshot of the report. Removing an existing vote writes only that set and
// its count; adding or switching writes both sets and both counts in one
// patch, so a user id is never in both sets at once.
//
// This is a read-modify-write over a stale snapshot, not an atomic store
// transaction: two rapid toggles by the same user from two devices can
// overwrite each other. Concurrent toggles by different users are disjoint
// and safe. On failure the local view is left unchanged until the next
// subscription update.
func (e *Engine) ToggleVote(ctx context.Context, sess *Session, report model.Report, kind VoteKind) error {
	if !sess.HasUser() {
		return precondition("user_id", "no interactive session")
	}
	if report.ID == "" {
		return precondition("report_id", "unknown report")
	}

	var patch map[string]interface{}
	switch kind {
	case Upvote:
		if report.HasUpvoted(sess.UserID) {
			upvoted := removeID(report.UpvotedBy, sess.UserID)
			patch = map[string]interface{}{
				store.FieldUpvotedBy: upvoted,
				store.FieldUpvotes:   len(upvoted),
			}
		} else {
			upvoted := appendID(report.UpvotedBy, sess.UserID)
			downvoted := removeID(report.DownvotedBy, sess.UserID)
			patch = map[string]interface{}{
				store.FieldUpvotedBy:   upvoted,
				store.FieldUpvotes:     len(upvoted),
				store.FieldDownvotedBy: downvoted,
				store.FieldDownvotes:   len(downvoted),
			}
		}
	case Downvote:
		if report.HasDownvoted(sess.UserID) {
			downvoted := removeID(report.DownvotedBy, sess.UserID)
			patch = map[string]interface{}{
				store.FieldDownvotedBy: downvoted,
				store.FieldDownvotes:   len(downvoted),
			}
		} else {
			downvoted := appendID(report.DownvotedBy, sess.UserID)
			upvoted := removeID(report.UpvotedBy, sess.UserID)
			patch = map[string]interface{}{
				store.FieldDownvotedBy: downvoted,
				store.FieldDownvotes:   len(downvoted),
				store.FieldUpvotedBy:   upvoted,
				store.FieldUpvotes:     len(upvoted),
			}
		}
	default:
		return precondition("vote_type", "must be UPVOTE or DOWNVOTE")
	}

	return e.Store.Patch(ctx, store.ReportsCollection, report.ID, patch)
}

func appendID(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/internal/store"
)

func seedReport(t *testing.T, mem *store.MemoryStore, id string, upvotedBy, downvotedBy []string) model.Report {
	t.Helper()
	mem.Put(store.ReportsCollection, id, map[string]interface{}{
		store.FieldCompanyName: "Acme Freight",
		store.FieldUpvotedBy:   upvotedBy,
		store.FieldUpvotes:     len(upvotedBy),
		store.FieldDownvotedBy: downvotedBy,
		store.FieldDownvotes:   len(downvotedBy),
	})
	doc, _ := mem.Doc(store.ReportsCollection, id)
	return store.DecodeReport(store.Document{ID: id, Fields: doc})
}

func storedReport(t *testing.T, mem *store.MemoryStore, id string) model.Report {
	t.Helper()
	doc, ok := mem.Doc(store.ReportsCollection, id)
	if !ok {
		t.Fatalf("report %s not in store", id)
	}
	return store.DecodeReport(store.Document{ID: id, Fields: doc})
}

func TestToggleVote(t *testing.T) {
	tests := []struct {
		name            string
		upvotedBy       []string
		downvotedBy     []string
		kind            VoteKind
		wantUpvotedBy   []string
		wantDownvotedBy []string
	}{
		{
			name:            "first upvote",
			kind:            Upvote,
			wantUpvotedBy:   []string{"alice"},
			wantDownvotedBy: []string{},
		},
		{
			name:            "upvote again removes it",
			upvotedBy:       []string{"bob", "alice"},
			kind:            Upvote,
			wantUpvotedBy:   []string{"bob"},
			wantDownvotedBy: []string{},
		},
		{
			name:            "downvote switches an upvote in one step",
			upvotedBy:       []string{"alice", "bob"},
			downvotedBy:     []string{"carol"},
			kind:            Downvote,
			wantUpvotedBy:   []string{"bob"},
			wantDownvotedBy: []string{"carol", "alice"},
		},
		{
			name:            "upvote switches a downvote in one step",
			downvotedBy:     []string{"alice"},
			kind:            Upvote,
			wantUpvotedBy:   []string{"alice"},
			wantDownvotedBy: []string{},
		},
		{
			name:            "downvote again removes it",
			downvotedBy:     []string{"alice", "bob"},
			kind:            Downvote,
			wantUpvotedBy:   []string{},
			wantDownvotedBy: []string{"bob"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemoryStore()
			e := New(mem, nil)
			report := seedReport(t, mem, "r1", tt.upvotedBy, tt.downvotedBy)

			if err := e.ToggleVote(context.Background(), NewSession("alice"), report, tt.kind); err != nil {
				t.Fatalf("ToggleVote: %v", err)
			}

			got := storedReport(t, mem, "r1")
			if !reflect.DeepEqual(got.UpvotedBy, tt.wantUpvotedBy) {
				t.Errorf("upvotedBy = %v, want %v", got.UpvotedBy, tt.wantUpvotedBy)
			}
			if !reflect.DeepEqual(got.DownvotedBy, tt.wantDownvotedBy) {
				t.Errorf("downvotedBy = %v, want %v", got.DownvotedBy, tt.wantDownvotedBy)
			}
			if got.Upvotes != len(got.UpvotedBy) {
				t.Errorf("upvotes = %d, want %d", got.Upvotes, len(got.UpvotedBy))
			}
			if got.Downvotes != len(got.DownvotedBy) {
				t.Errorf("downvotes = %d, want %d", got.Downvotes, len(got.DownvotedBy))
			}
			for _, id := range got.UpvotedBy {
				for _, other := range got.DownvotedBy {
					if id == other {
						t.Errorf("user %s is in both vote sets", id)
					}
				}
			}
		})
	}
}

func TestToggleVoteIsSelfInverse(t *testing.T) {
	mem := store.NewMemoryStore()
	e := New(mem, nil)
	seedReport(t, mem, "r1", []string{"bob"}, []string{"carol"})

	ctx := context.Background()
	sess := NewSession("alice")

	report := storedReport(t, mem, "r1")
	if err := e.ToggleVote(ctx, sess, report, Upvote); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	report = storedReport(t, mem, "r1")
	if err := e.ToggleVote(ctx, sess, report, Upvote); err != nil {
		t.Fatalf("second toggle: %v", err)
	}

	got := storedReport(t, mem, "r1")
	if !reflect.DeepEqual(got.UpvotedBy, []string{"bob"}) || !reflect.DeepEqual(got.DownvotedBy, []string{"carol"}) {
		t.Errorf("double toggle changed state: upvotedBy=%v downvotedBy=%v", got.UpvotedBy, got.DownvotedBy)
	}
}

func TestToggleVotePreconditions(t *testing.T) {
	mem := store.NewMemoryStore()
	e := New(mem, nil)
	report := seedReport(t, mem, "r1", nil, nil)

	var pre *PreconditionError
	if err := e.ToggleVote(context.Background(), nil, report, Upvote); !errors.As(err, &pre) {
		t.Errorf("nil session: got %v, want PreconditionError", err)
	}
	if err := e.ToggleVote(context.Background(), NewSession(""), report, Upvote); !errors.As(err, &pre) {
		t.Errorf("anonymous-less session: got %v, want PreconditionError", err)
	}
	if err := e.ToggleVote(context.Background(), NewSession("alice"), model.Report{}, Upvote); !errors.As(err, &pre) {
		t.Errorf("missing report id: got %v, want PreconditionError", err)
	}
	if err := e.ToggleVote(context.Background(), NewSession("alice"), report, VoteKind("SIDEWAYS")); !errors.As(err, &pre) {
		t.Errorf("bad vote kind: got %v, want PreconditionError", err)
	}

	got := storedReport(t, mem, "r1")
	if got.Upvotes != 0 || got.Downvotes != 0 {
		t.Errorf("precondition failures reached the store: %+v", got)
	}
}

func TestToggleVoteStoreFailureLeavesState(t *testing.T) {
	mem := store.NewMemoryStore()
	e := New(mem, nil)
	report := seedReport(t, mem, "r1", []string{"bob"}, nil)

	mem.SetFailure(errors.New("connection reset"))
	err := e.ToggleVote(context.Background(), NewSession("alice"), report, Upvote)

	var unavailable *store.UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("got %v, want UnavailableError", err)
	}

	mem.SetFailure(nil)
	got := storedReport(t, mem, "r1")
	if !reflect.DeepEqual(got.UpvotedBy, []string{"bob"}) {
		t.Errorf("failed write mutated the store: %v", got.UpvotedBy)
	}
}

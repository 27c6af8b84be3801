package engine

import (
	"context"
	"testing"
	"time"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/internal/store"
)

func messageIDs(msgs []model.ChatMessage) []string {
	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.ID
	}
	return ids
}

func equalMessageIDs(got []model.ChatMessage, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].ID != want[i] {
			return false
		}
	}
	return true
}

func TestChatViewOrdersAscending(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	mem.Put(store.ChatCollection, "m2", map[string]interface{}{
		store.FieldText:      "anyone run I-80 through Wyoming today?",
		store.FieldUserID:    "bob",
		store.FieldTimestamp: base.Add(2 * time.Minute),
	})
	mem.Put(store.ChatCollection, "m1", map[string]interface{}{
		store.FieldText:      "morning all",
		store.FieldUserID:    "alice",
		store.FieldTimestamp: base.Add(1 * time.Minute),
	})

	view := NewChatView(mem)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	waitFor(t, "ascending order", func() bool {
		return equalMessageIDs(view.Messages(), []string{"m1", "m2"})
	})
}

func TestChatViewIsAppendOnly(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	mem.Put(store.ChatCollection, "m1", map[string]interface{}{
		store.FieldText:      "first",
		store.FieldUserID:    "alice",
		store.FieldTimestamp: base,
	})

	view := NewChatView(mem)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	waitFor(t, "initial message", func() bool {
		return len(view.Messages()) == 1
	})

	// A document vanishing from the store snapshot must not remove the
	// message from the view.
	mem.Delete(store.ChatCollection, "m1")
	mem.Put(store.ChatCollection, "m2", map[string]interface{}{
		store.FieldText:      "second",
		store.FieldUserID:    "bob",
		store.FieldTimestamp: base.Add(time.Minute),
	})

	waitFor(t, "append-only history", func() bool {
		return equalMessageIDs(view.Messages(), []string{"m1", "m2"})
	})
}

func TestChatViewPlaceholderTimestampCorrection(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	mem.Put(store.ChatCollection, "settled", map[string]interface{}{
		store.FieldText:      "settled message",
		store.FieldUserID:    "alice",
		store.FieldTimestamp: base.Add(-10 * time.Minute),
	})
	// Written but not yet acknowledged: no server timestamp on the wire.
	mem.Put(store.ChatCollection, "pending", map[string]interface{}{
		store.FieldText:   "pending message",
		store.FieldUserID: "bob",
	})

	view := NewChatView(mem)
	view.clock = func() time.Time { return base }
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	// Local receive time places the pending message after the settled one.
	waitFor(t, "placeholder order", func() bool {
		return equalMessageIDs(view.Messages(), []string{"settled", "pending"})
	})

	// The server timestamp arrives and turns out to be earlier; the entry
	// moves, it is not duplicated.
	mem.Put(store.ChatCollection, "pending", map[string]interface{}{
		store.FieldText:      "pending message",
		store.FieldUserID:    "bob",
		store.FieldTimestamp: base.Add(-20 * time.Minute),
	})

	waitFor(t, "corrected order", func() bool {
		msgs := view.Messages()
		return equalMessageIDs(msgs, []string{"pending", "settled"}) &&
			msgs[0].CreatedAt != nil && msgs[0].CreatedAt.Equal(base.Add(-20*time.Minute))
	})
}

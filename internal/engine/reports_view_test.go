package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/internal/store"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func reportIDs(reports []model.Report) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}

func equalIDs(got []model.Report, want []string) bool {
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

func TestReportsViewSortsByRecency(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	mem.Put(store.ReportsCollection, "old", map[string]interface{}{
		store.FieldCompanyName: "Beta Logistics",
		store.FieldTimestamp:   base.Add(50 * time.Minute),
	})
	mem.Put(store.ReportsCollection, "new", map[string]interface{}{
		store.FieldCompanyName: "Alpha Haulage",
		store.FieldTimestamp:   base.Add(100 * time.Minute),
	})
	// No timestamp yet: the server time has not round-tripped, so this one
	// must sort last.
	mem.Put(store.ReportsCollection, "pending", map[string]interface{}{
		store.FieldCompanyName: "Gamma Transport",
	})

	view := NewReportsView(mem, NewSession("alice"))
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	waitFor(t, "recency order", func() bool {
		return equalIDs(view.Reports(), []string{"new", "old", "pending"})
	})
}

func TestReportsViewSortModeSwitchWithoutResubscribe(t *testing.T) {
	mem := store.NewMemoryStore()
	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	mem.Put(store.ReportsCollection, "z", map[string]interface{}{
		store.FieldCompanyName: "Zeta Freight",
		store.FieldTimestamp:   base.Add(3 * time.Hour),
	})
	mem.Put(store.ReportsCollection, "a", map[string]interface{}{
		store.FieldCompanyName: "Acme Freight",
		store.FieldTimestamp:   base.Add(2 * time.Hour),
	})
	mem.Put(store.ReportsCollection, "m", map[string]interface{}{
		store.FieldCompanyName: "Midway Trucking",
		store.FieldTimestamp:   base.Add(1 * time.Hour),
	})

	sess := NewSession("alice")
	view := NewReportsView(mem, sess)
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	waitFor(t, "recency order", func() bool {
		return equalIDs(view.Reports(), []string{"z", "a", "m"})
	})

	view.SetSession(sess.WithSortMode(SortByName))
	if got := view.Reports(); !equalIDs(got, []string{"a", "m", "z"}) {
		t.Errorf("name order = %v, want [a m z]", reportIDs(got))
	}

	// Switching back re-sorts the held snapshot too.
	view.SetSession(sess.WithSortMode(SortByRecency))
	if got := view.Reports(); !equalIDs(got, []string{"z", "a", "m"}) {
		t.Errorf("recency order = %v, want [z a m]", reportIDs(got))
	}
}

func TestReportsViewToleratesMalformedDocuments(t *testing.T) {
	mem := store.NewMemoryStore()

	mem.Put(store.ReportsCollection, "good", map[string]interface{}{
		store.FieldCompanyName: "Acme Freight",
		store.FieldUpvotes:     2,
		store.FieldUpvotedBy:   []string{"bob", "carol"},
	})
	mem.Put(store.ReportsCollection, "bad", map[string]interface{}{
		store.FieldCompanyName: 42,
		store.FieldUpvotes:     "many",
		store.FieldUpvotedBy:   "bob",
		store.FieldTimestamp:   "not-a-time",
	})

	view := NewReportsView(mem, NewSession("alice"))
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	waitFor(t, "both documents", func() bool {
		return len(view.Reports()) == 2
	})

	for _, r := range view.Reports() {
		if r.ID != "bad" {
			continue
		}
		if r.CompanyName != "" || r.Upvotes != 0 || len(r.UpvotedBy) != 0 || r.CreatedAt != nil {
			t.Errorf("malformed document decoded as %+v, want zero values", r)
		}
	}
}

func TestReportsViewOnChange(t *testing.T) {
	mem := store.NewMemoryStore()

	var mu sync.Mutex
	var last []model.Report

	view := NewReportsView(mem, NewSession("alice"))
	view.OnChange(func(reports []model.Report) {
		mu.Lock()
		last = reports
		mu.Unlock()
	})
	if err := view.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer view.Close()

	mem.Put(store.ReportsCollection, "r1", map[string]interface{}{
		store.FieldCompanyName: "Acme Freight",
	})

	waitFor(t, "change callback", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(last) == 1 && last[0].ID == "r1"
	})
}

package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/internal/store"
)

// ReportsView is the live materialized view of the report collection. Every
// change notification rebuilds the local sequence from the full snapshot;
// there is nothing to diff. All reports are public, so the subscription has
// no filter.
type ReportsView struct {
	store store.Store

	mu       sync.Mutex
	session  *Session
	reports  []model.Report
	sub      store.Subscription
	onChange func([]model.Report)
}

func NewReportsView(s store.Store, sess *Session) *ReportsView {
	return &ReportsView{store: s, session: sess}
}

// OnChange registers a callback invoked with a copy of the materialized
// sequence after every applied snapshot. Set it before Start.
func (v *ReportsView) OnChange(fn func([]model.Report)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

func (v *ReportsView) Start(ctx context.Context) error {
	sub, err := v.store.Subscribe(ctx, store.ReportsCollection)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.sub = sub
	v.mu.Unlock()

	go func() {
		for snap := range sub.Snapshots() {
			v.apply(snap)
		}
	}()
	return nil
}

func (v *ReportsView) apply(snap store.Snapshot) {
	reports := make([]model.Report, 0, len(snap.Docs))
	seen := make(map[string]struct{}, len(snap.Docs))
	for _, doc := range snap.Docs {
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		reports = append(reports, store.DecodeReport(doc))
	}

	v.mu.Lock()
	SortReports(reports, v.session.SortMode)
	v.reports = reports
	cb := v.onChange
	out := copyReports(reports)
	v.mu.Unlock()

	if cb != nil {
		cb(out)
	}
}

// Reports returns a copy of the current materialized sequence.
func (v *ReportsView) Reports() []model.Report {
	v.mu.Lock()
	defer v.mu.Unlock()
	return copyReports(v.reports)
}

// SetSession swaps the session context. A sort-mode change re-sorts the
// already-held snapshot; no new subscription is needed.
func (v *ReportsView) SetSession(sess *Session) {
	v.mu.Lock()
	v.session = sess
	SortReports(v.reports, sess.SortMode)
	cb := v.onChange
	out := copyReports(v.reports)
	v.mu.Unlock()

	if cb != nil {
		cb(out)
	}
}

// Close detaches the subscription; no further notifications are processed.
func (v *ReportsView) Close() {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func SortReports(reports []model.Report, mode SortMode) {
	switch mode {
	case SortByName:
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].CompanyName < reports[j].CompanyName
		})
	default:
		// Descending by creation time. An unacknowledged timestamp sorts
		// as epoch zero, so a just-created report sits at the bottom of
		// the writer's own view until the server time round-trips.
		sort.SliceStable(reports, func(i, j int) bool {
			return timeOrZero(reports[i].CreatedAt).After(timeOrZero(reports[j].CreatedAt))
		})
	}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func copyReports(reports []model.Report) []model.Report {
	out := make([]model.Report, len(reports))
	copy(out, reports)
	return out
}

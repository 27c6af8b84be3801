package engine

// SortMode selects the ordering of the materialized report view.
type SortMode string

const (
	// SortByRecency orders descending by creation time. A report whose
	// server timestamp has not round-tripped yet sorts as oldest.
	SortByRecency SortMode = "recency"
	// SortByName orders ascending by company name.
	SortByName SortMode = "name"
)

// Session carries the per-client state the synchronizers need: the voting
// and authorship identity plus the current sort mode. It is immutable;
// changing the sort mode swaps in a new value rather than mutating the old
// one, so a view is never re-sorted against a half-updated session.
type Session struct {
	UserID   string
	SortMode SortMode
}

func NewSession(userID string) *Session {
	return &Session{UserID: userID, SortMode: SortByRecency}
}

func (s *Session) WithSortMode(mode SortMode) *Session {
	return &Session{UserID: s.UserID, SortMode: mode}
}

// HasUser reports whether an interactive session exists. Operations that
// write refuse to run without one.
func (s *Session) HasUser() bool {
	return s != nil && s.UserID != ""
}

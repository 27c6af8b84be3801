package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/internal/store"
)

// ChatView is the live materialized view of the chat collection: strictly
// ascending by creation time and append-only. A later notification may add
// messages or correct a placeholder timestamp, never remove an entry. The
// full history is held in memory; that is an accepted scale limit for a
// community app.
type ChatView struct {
	store store.Store
	clock func() time.Time

	mu       sync.Mutex
	entries  []chatEntry
	index    map[string]int
	sub      store.Subscription
	onChange func([]model.ChatMessage)
}

type chatEntry struct {
	msg model.ChatMessage
	// sortKey is the local receive time until the server timestamp
	// round-trips, then the server time.
	sortKey time.Time
}

func NewChatView(s store.Store) *ChatView {
	return &ChatView{
		store: s,
		clock: time.Now,
		index: make(map[string]int),
	}
}

func (v *ChatView) OnChange(fn func([]model.ChatMessage)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

func (v *ChatView) Start(ctx context.Context) error {
	sub, err := v.store.Subscribe(ctx, store.ChatCollection)
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

func (v *ChatView) apply(snap store.Snapshot) {
	v.mu.Lock()
	for _, doc := range snap.Docs {
		msg := store.DecodeChatMessage(doc)
		if i, ok := v.index[msg.ID]; ok {
			// Messages are immutable; the only correction that can
			// arrive is the resolved server timestamp.
			if msg.CreatedAt != nil {
				v.entries[i].msg.CreatedAt = msg.CreatedAt
				v.entries[i].sortKey = *msg.CreatedAt
			}
			continue
		}
		key := v.clock()
		if msg.CreatedAt != nil {
			key = *msg.CreatedAt
		}
		v.entries = append(v.entries, chatEntry{msg: msg, sortKey: key})
		v.index[msg.ID] = len(v.entries) - 1
	}

	sort.SliceStable(v.entries, func(i, j int) bool {
		return v.entries[i].sortKey.Before(v.entries[j].sortKey)
	})
	for i, e := range v.entries {
		v.index[e.msg.ID] = i
	}

	cb := v.onChange
	out := v.messagesLocked()
	v.mu.Unlock()

	if cb != nil {
		cb(out)
	}
}

// Messages returns a copy of the materialized sequence.
func (v *ChatView) Messages() []model.ChatMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.messagesLocked()
}

func (v *ChatView) messagesLocked() []model.ChatMessage {
	out := make([]model.ChatMessage, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.msg
	}
	return out
}

// Close detaches the subscription. Re-entering chat means a fresh view and
// a fresh subscription delivering the current full snapshot again.
func (v *ChatView) Close() {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

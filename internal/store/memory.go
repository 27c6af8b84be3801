package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryStore is an in-process Store used by the "memory" backend and the
// test suites. Every write fans the full collection state out to the
// collection's subscribers, matching the snapshot protocol of the remote
// backends.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*memCollection
	failErr     error
}

type memCollection struct {
	order    []string
	docs     map[string]map[string]interface{}
	watchers map[*memSubscription]struct{}
}

type memSubscription struct {
	store      *MemoryStore
	collection *memCollection
	ch         chan Snapshot
	closed     bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

// SetFailure makes every subsequent write fail with err until cleared with
// nil. Used to exercise the store-unreachable paths.
func (m *MemoryStore) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

func (m *MemoryStore) collection(name string) *memCollection {
	col, ok := m.collections[name]
	if !ok {
		col = &memCollection{
			docs:     make(map[string]map[string]interface{}),
			watchers: make(map[*memSubscription]struct{}),
		}
		m.collections[name] = col
	}
	return col
}

func (m *MemoryStore) Create(_ context.Context, collection string, fields map[string]interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return "", Unavailable("create", m.failErr)
	}

	id := uuid.NewString()
	col := m.collection(collection)
	col.order = append(col.order, id)
	col.docs[id] = resolveTimestamps(fields)
	m.notifyLocked(col)
	return id, nil
}

func (m *MemoryStore) Patch(_ context.Context, collection, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return Unavailable("patch", m.failErr)
	}

	col := m.collection(collection)
	doc, ok := col.docs[id]
	if !ok {
		return Unavailable("patch", errors.Errorf("document %s not found in %s", id, collection))
	}
	for k, v := range resolveTimestamps(fields) {
		doc[k] = v
	}
	m.notifyLocked(col)
	return nil
}

func (m *MemoryStore) Subscribe(_ context.Context, collection string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	sub := &memSubscription{
		store:      m,
		collection: col,
		ch:         make(chan Snapshot, 64),
	}
	col.watchers[sub] = struct{}{}
	// Subscribers receive the current full state immediately.
	sub.ch <- snapshotLocked(col)
	return sub, nil
}

// Put inserts or replaces a document with a caller-chosen id, bypassing
// timestamp resolution. Lets tests seed documents with absent or malformed
// fields.
func (m *MemoryStore) Put(collection, id string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	if _, ok := col.docs[id]; !ok {
		col.order = append(col.order, id)
	}
	col.docs[id] = fields
	m.notifyLocked(col)
}

// Delete removes a document. Only tests use it; the product never deletes.
func (m *MemoryStore) Delete(collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	col := m.collection(collection)
	if _, ok := col.docs[id]; !ok {
		return
	}
	delete(col.docs, id)
	for i, docID := range col.order {
		if docID == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
	m.notifyLocked(col)
}

// Doc returns a copy of one document's fields, for test assertions.
func (m *MemoryStore) Doc(collection, id string) (map[string]interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.collection(collection).docs[id]
	if !ok {
		return nil, false
	}
	return copyFields(doc), true
}

// Len reports the number of documents in a collection.
func (m *MemoryStore) Len(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collection(collection).docs)
}

func (m *MemoryStore) notifyLocked(col *memCollection) {
	snap := snapshotLocked(col)
	for sub := range col.watchers {
		select {
		case sub.ch <- snap:
		default:
			// Slow subscriber; it will catch up on the next change.
		}
	}
}

func snapshotLocked(col *memCollection) Snapshot {
	snap := Snapshot{Docs: make([]Document, 0, len(col.docs))}
	for _, id := range col.order {
		doc, ok := col.docs[id]
		if !ok {
			continue
		}
		snap.Docs = append(snap.Docs, Document{ID: id, Fields: copyFields(doc)})
	}
	return snap
}

func resolveTimestamps(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = time.Now().UTC()
			continue
		}
		out[k] = v
	}
	return out
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (s *memSubscription) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *memSubscription) Close() {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	delete(s.collection.watchers, s)
	close(s.ch)
}

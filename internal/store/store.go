package store

import (
	"context"
	"fmt"
)

// Collection names shared by every backend.
const (
	ReportsCollection = "reports"
	ChatCollection    = "driver-chat-messages"
)

// ServerTimestamp is a sentinel field value. Backends replace it with the
// store-assigned write time; until that round-trips back through the
// subscription the field reads as absent.
var ServerTimestamp = serverTimestamp{}

type serverTimestamp struct{}

// Document is one record of a collection, schemaless on purpose: the views
// are required to tolerate malformed documents, so decoding stays out of
// the store boundary.
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// Snapshot is the full current state of a collection, not a delta.
type Snapshot struct {
	Docs []Document
}

// Subscription delivers a Snapshot on every change to the collection for
// the lifetime of the subscription. Close detaches it; the channel is
// closed afterwards and no further notifications are processed.
type Subscription interface {
	Snapshots() <-chan Snapshot
	Close()
}

// Store is the remote document store boundary. It is intentionally narrow
// (create, patch, full-snapshot subscribe) so the snapshot protocol can be
// swapped for a delta-based one without touching the synchronizers.
type Store interface {
	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	Patch(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Subscribe(ctx context.Context, collection string) (Subscription, error)
}

// UnavailableError reports that a write or subscription failed to reach the
// remote store. Callers keep their last-known-good view; the engine performs
// no automatic retry.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func Unavailable(op string, err error) *UnavailableError {
	return &UnavailableError{Op: op, Err: err}
}

// Package engine is the synchronization core behind the blacklist app: it
// keeps the report and chat views of every client consistent with the
// remote document store and owns the vote and submission state machines.
// There is no central coordinator; consistency is store-mediated.
package engine

import (
	"context"
	"io"

	"github.com/truckersblacklist/blacklist_api/internal/store"
)

// BlobStore is the attachment upload boundary.
type BlobStore interface {
	Upload(ctx context.Context, path string, r io.Reader) (string, error)
}

type Engine struct {
	Store store.Store
	Blobs BlobStore
}

func New(s store.Store, blobs BlobStore) *Engine {
	return &Engine{Store: s, Blobs: blobs}
}

package store

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the production backend. Collections live under the
// app-scoped path the mobile clients use, so both read the same documents.
type FirestoreStore struct {
	client *firestore.Client
	appID  string
}

func NewFirestoreStore(ctx context.Context, projectID, appID, credentialsFile string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &FirestoreStore{client: client, appID: appID}, nil
}

func (s *FirestoreStore) col(name string) *firestore.CollectionRef {
	return s.client.Collection(fmt.Sprintf("artifacts/%s/public/data/%s", s.appID, name))
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	doc := s.col(collection).NewDoc()
	if _, err := doc.Create(ctx, translateSentinels(fields)); err != nil {
		return "", Unavailable("create", err)
	}
	return doc.ID, nil
}

func (s *FirestoreStore) Patch(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	docRef := s.col(collection).Doc(id)
	if _, err := docRef.Set(ctx, translateSentinels(fields), firestore.MergeAll); err != nil {
		return Unavailable("patch", err)
	}
	return nil
}

func (s *FirestoreStore) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &firestoreSubscription{
		ch:     make(chan Snapshot, 16),
		cancel: cancel,
	}

	it := s.col(collection).Query.Snapshots(subCtx)
	go func() {
		defer close(sub.ch)
		defer it.Stop()
		for {
			qsnap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				// The previous materialized view stays in place; the
				// caller re-subscribes if it still wants updates.
				log.Println("firestore subscription error:", err)
				return
			}

			snap, err := readQuerySnapshot(qsnap)
			if err != nil {
				log.Println("firestore snapshot read error:", err)
				continue
			}

			select {
			case sub.ch <- snap:
			case <-subCtx.Done():
				return
			}
		}
	}()

	return sub, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func readQuerySnapshot(qsnap *firestore.QuerySnapshot) (Snapshot, error) {
	var snap Snapshot
	for {
		doc, err := qsnap.Documents.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return Snapshot{}, err
		}
		snap.Docs = append(snap.Docs, Document{ID: doc.Ref.ID, Fields: doc.Data()})
	}
	return snap, nil
}

func translateSentinels(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

type firestoreSubscription struct {
	ch     chan Snapshot
	cancel context.CancelFunc
}

func (s *firestoreSubscription) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *firestoreSubscription) Close() {
	s.cancel()
}

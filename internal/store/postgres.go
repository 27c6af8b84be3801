package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/truckersblacklist/blacklist_api/internal/db"
)

const notifyChannel = "document_changes"

// PostgresStore keeps documents in a single jsonb table and uses
// LISTEN/NOTIFY to drive the snapshot subscriptions. Schema:
//
//	CREATE TABLE documents (
//	    seq        bigserial PRIMARY KEY,
//	    collection text NOT NULL,
//	    id         uuid NOT NULL DEFAULT gen_random_uuid() UNIQUE,
//	    fields     jsonb NOT NULL
//	);
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(database *db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

func (s *PostgresStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	plain, sentinels := splitSentinels(fields)
	payload, err := json.Marshal(plain)
	if err != nil {
		return "", Unavailable("create", err)
	}

	// Sentinel fields take the transaction time so the timestamp is
	// server-assigned, like the other backends.
	expr := "$2::jsonb"
	args := []interface{}{collection, payload}
	for _, key := range sentinels {
		args = append(args, key)
		expr += fmt.Sprintf(" || jsonb_build_object($%d::text, to_jsonb(now()))", len(args))
	}

	query := fmt.Sprintf(`
        INSERT INTO documents (collection, fields)
        VALUES ($1, %s)
        RETURNING id
    `, expr)

	var id string
	err = s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, collection)
		return err
	})
	if err != nil {
		return "", Unavailable("create", err)
	}
	return id, nil
}

func (s *PostgresStore) Patch(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	payload, err := json.Marshal(resolveTimestamps(fields))
	if err != nil {
		return Unavailable("patch", err)
	}

	err = s.db.RunInTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            UPDATE documents
            SET fields = fields || $3::jsonb
            WHERE collection = $1 AND id = $2
        `, collection, id, payload)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("document %s not found in %s", id, collection)
		}
		_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, collection)
		return err
	})
	if err != nil {
		return Unavailable("patch", err)
	}
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context, collection string) (Subscription, error) {
	conn, err := s.db.Pool().Acquire(ctx)
	if err != nil {
		return nil, Unavailable("subscribe", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{notifyChannel}.Sanitize()); err != nil {
		conn.Release()
		return nil, Unavailable("subscribe", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &postgresSubscription{
		ch:     make(chan Snapshot, 16),
		cancel: cancel,
	}

	go func() {
		defer close(sub.ch)
		defer conn.Release()

		// Initial full state, then one re-read per notification.
		if snap, err := s.loadSnapshot(subCtx, collection); err == nil {
			sub.ch <- snap
		} else if subCtx.Err() == nil {
			log.Println("postgres initial snapshot error:", err)
		}

		for {
			notification, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				log.Println("postgres notification error:", err)
				return
			}
			if notification.Payload != collection {
				continue
			}
			snap, err := s.loadSnapshot(subCtx, collection)
			if err != nil {
				if subCtx.Err() == nil {
					log.Println("postgres snapshot reload error:", err)
				}
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

func (s *PostgresStore) loadSnapshot(ctx context.Context, collection string) (Snapshot, error) {
	rows, err := s.db.Pool().Query(ctx, `
        SELECT id, fields
        FROM documents
        WHERE collection = $1
        ORDER BY seq
    `, collection)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var (
			id     string
			fields []byte
		)
		if err := rows.Scan(&id, &fields); err != nil {
			return Snapshot{}, err
		}
		decoded := map[string]interface{}{}
		if err := json.Unmarshal(fields, &decoded); err != nil {
			log.Printf("skipping undecodable document %s in %s: %v", id, collection, err)
			continue
		}
		snap.Docs = append(snap.Docs, Document{ID: id, Fields: decoded})
	}
	return snap, rows.Err()
}

func splitSentinels(fields map[string]interface{}) (map[string]interface{}, []string) {
	plain := make(map[string]interface{}, len(fields))
	var sentinels []string
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			sentinels = append(sentinels, k)
			continue
		}
		if t, ok := v.(time.Time); ok {
			plain[k] = t.Format(time.RFC3339Nano)
			continue
		}
		plain[k] = v
	}
	return plain, sentinels
}

type postgresSubscription struct {
	ch     chan Snapshot
	cancel context.CancelFunc
}

func (s *postgresSubscription) Snapshots() <-chan Snapshot {
	return s.ch
}

func (s *postgresSubscription) Close() {
	s.cancel()
}

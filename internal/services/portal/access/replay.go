package access

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/ashmont/clientdocs/internal/platform/errors"
	"go.etcd.io/bbolt"
)

const consumedGrantBucket = "consumed_grants"

// ReplayStore records consumed grant IDs so each grant signs in exactly once.
type ReplayStore struct {
	db *bbolt.DB
}

// OpenReplayStore opens a BoltDB-backed replay store at the provided path.
func OpenReplayStore(path string) (*ReplayStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("replay store path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open replay store db: %w", err)
	}

	store := &ReplayStore{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *ReplayStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Consume records one grant ID. A second consume of the same ID fails with a
// grant-used error.
func (s *ReplayStore) Consume(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("replay store is not configured")
	}
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return fmt.Errorf("grant id is required")
	}

	payload, err := json.Marshal(expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("marshal grant expiry: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(consumedGrantBucket))
		if bucket == nil {
			return fmt.Errorf("consumed grant bucket is missing")
		}
		if bucket.Get([]byte(jti)) != nil {
			return apperrors.New(apperrors.CodeGrantUsed, "access grant already used")
		}
		return bucket.Put([]byte(jti), payload)
	})
}

// PurgeExpired drops consumed grant IDs whose grants can no longer validate.
func (s *ReplayStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("replay store is not configured")
	}
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(consumedGrantBucket))
		if bucket == nil {
			return fmt.Errorf("consumed grant bucket is missing")
		}

		var stale [][]byte
		cursor := bucket.Cursor()
		for key, value := cursor.First(); key != nil; key, value = cursor.Next() {
			var expiresAt time.Time
			if err := json.Unmarshal(value, &expiresAt); err != nil {
				stale = append(stale, append([]byte(nil), key...))
				continue
			}
			if !expiresAt.After(now) {
				stale = append(stale, append([]byte(nil), key...))
			}
		}
		for _, key := range stale {
			if err := bucket.Delete(key); err != nil {
				return fmt.Errorf("delete consumed grant: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *ReplayStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(consumedGrantBucket))
		if err != nil {
			return fmt.Errorf("create consumed grant bucket: %w", err)
		}
		return nil
	})
}

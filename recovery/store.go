// Package recovery persists pre-isolation security group membership so an
// isolated instance can be restored later. Records are keyed by instance id;
// a later save for the same instance replaces the earlier one inside a
// single transaction.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/nimbusdfir/custody/types"
)

var bucketRecords = []byte("recovery_records")

// ErrNotFound means no recovery record exists for the instance.
var ErrNotFound = errors.New("recovery record not found")

// Store is a bbolt-backed recovery record store with an in-memory index
// for ordered listing.
type Store struct {
	mu    sync.RWMutex
	index *btree.BTreeG[string]
	db    *bbolt.DB
}

// Open creates or opens a store at the given path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open recovery store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRecords)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize recovery store: %w", err)
	}

	store := &Store{
		index: btree.NewG[string](32, func(a, b string) bool { return a < b }),
		db:    db,
	}
	if err := store.rebuildIndex(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes a record, replacing any existing record for the instance.
func (s *Store) Save(record types.RecoveryRecord) error {
	if record.InstanceID == "" {
		return fmt.Errorf("recovery record requires an instance id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal recovery record: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Put([]byte(record.InstanceID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to save recovery record: %w", err)
	}

	s.index.ReplaceOrInsert(record.InstanceID)
	return nil
}

// Get returns the record for an instance, or ErrNotFound.
func (s *Store) Get(instanceID string) (*types.RecoveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var record types.RecoveryRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(bucketRecords).Get([]byte(instanceID))
		if value == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, instanceID)
		}
		return json.Unmarshal(value, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes the record for an instance. Deleting a missing record is
// not an error.
func (s *Store) Delete(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).Delete([]byte(instanceID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete recovery record: %w", err)
	}

	s.index.Delete(instanceID)
	return nil
}

// List returns all records ordered by instance id.
func (s *Store) List() ([]types.RecoveryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []types.RecoveryRecord
	var walkErr error

	s.index.Ascend(func(instanceID string) bool {
		err := s.db.View(func(tx *bbolt.Tx) error {
			value := tx.Bucket(bucketRecords).Get([]byte(instanceID))
			if value == nil {
				return nil
			}
			var record types.RecoveryRecord
			if err := json.Unmarshal(value, &record); err != nil {
				return err
			}
			records = append(records, record)
			return nil
		})
		if err != nil {
			walkErr = err
			return false
		}
		return true
	})

	if walkErr != nil {
		return nil, fmt.Errorf("failed to list recovery records: %w", walkErr)
	}
	return records, nil
}

// rebuildIndex loads all record keys from disk into the index.
func (s *Store) rebuildIndex() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, _ []byte) error {
			s.index.ReplaceOrInsert(string(k))
			return nil
		})
	})
}

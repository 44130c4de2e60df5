package repository

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/NamanBalaji/vidvault/internal/logger"
)

const (
	kvBucket       = "kv"
	metadataBucket = "metadata"
	schemaVersion  = 1
)

var ErrEmptyKey = errors.New("key cannot be empty")

// BboltStore implements Store on top of a bbolt database file.
type BboltStore struct {
	db *bbolt.DB
}

// NewBboltStore opens (or creates) the database at dbPath.
func NewBboltStore(dbPath string) (*BboltStore, error) {
	options := &bbolt.Options{
		Timeout: 1 * time.Second,
	}

	db, err := bbolt.Open(dbPath, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &BboltStore{
		db: db,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// initialize sets up buckets and schema
func (s *BboltStore) initialize() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(kvBucket))
		if err != nil {
			return fmt.Errorf("failed to create kv bucket: %w", err)
		}

		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return fmt.Errorf("failed to create metadata bucket: %w", err)
		}

		err = meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", schemaVersion)))
		if err != nil {
			return fmt.Errorf("failed to store schema version: %w", err)
		}

		return nil
	})
}

// Get returns the value stored under key, or "" when the key is absent or
// the database cannot be read.
func (s *BboltStore) Get(key string) string {
	if key == "" {
		return ""
	}

	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(kvBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", kvBucket)
		}

		// bbolt values are only valid inside the transaction
		if data := bucket.Get([]byte(key)); data != nil {
			value = string(data)
		}

		return nil
	})
	if err != nil {
		logger.Warnf("Failed to read key %q: %v", key, err)
		return ""
	}

	return value
}

// Set stores value under key.
func (s *BboltStore) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(kvBucket))
		if bucket == nil {
			return fmt.Errorf("bucket not found: %s", kvBucket)
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save key %q: %w", key, err)
		}

		return nil
	})
}

// Close closes the database
func (s *BboltStore) Close() error {
	return s.db.Close()
}

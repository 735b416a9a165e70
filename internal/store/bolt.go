package store

import (
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucket = []byte("flowmeter")

// BoltStore persists values in a bbolt file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the state file at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state file %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create state bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// GetFloat returns the stored value for key, or def if absent or undecodable.
func (s *BoltStore) GetFloat(key string, def float64) float64 {
	value := def
	s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil {
			return nil
		}
		value = f
		return nil
	})
	return value
}

// PutFloat stores the value under key.
func (s *BoltStore) PutFloat(key string, value float64) error {
	raw := []byte(strconv.FormatFloat(value, 'g', -1, 64))
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

package storage

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

const boltBucket = "kv"

// Bolt is a Store backed by a bbolt database file.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the database at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(boltBucket)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", boltBucket, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(boltBucket)).Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		// data is only valid inside the transaction.
		value = append([]byte(nil), data...)
		return nil
	})
	return value, err
}

func (b *Bolt) Set(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(key), value)
	})
}

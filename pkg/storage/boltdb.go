package storage

import (
	"bytes"
	"fmt"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// bucketGLVault is the single bucket holding every key in the
// "glvault:" namespace. Sub-prefixes within the namespace (key:,
// audit:<alias>:<id>, ...) separate concerns logically, not physically.
var bucketGLVault = []byte("glvault")

// BoltBackend implements Backend using a local bbolt database, the
// single-node production deployment this repo provides.
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (creating if necessary) a bbolt database at
// <dataDir>/glvault.db.
func NewBoltBackend(dataDir string) (*BoltBackend, error) {
	dbPath := filepath.Join(dataDir, "glvault.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketGLVault)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Get(key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketGLVault).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *BoltBackend) Set(key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGLVault).Put([]byte(key), value)
	})
}

func (b *BoltBackend) Delete(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGLVault).Delete([]byte(key))
	})
}

func (b *BoltBackend) Scan(prefix string) ([]string, error) {
	var keys []string
	prefixBytes := []byte(prefix)

	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketGLVault).Cursor()
		for k, _ := c.Seek(prefixBytes); k != nil && bytes.HasPrefix(k, prefixBytes); k, _ = c.Next() {
			key := make([]byte, len(k))
			copy(key, k)
			keys = append(keys, string(key))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}

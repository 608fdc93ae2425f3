package store

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const databaseFileName = "lightclient.db"

var clientsBucket = []byte("clients")

// BoltStore persists into a single bbolt bucket. Values are snappy
// compressed.
type BoltStore struct {
	db           *bolt.DB
	databasePath string
}

// NewBoltStore opens (or creates) the database in dirPath.
func NewBoltStore(dirPath string) (*BoltStore, error) {
	if err := os.MkdirAll(dirPath, 0700); err != nil {
		return nil, err
	}
	datafile := filepath.Join(dirPath, databaseFileName)
	db, err := bolt.Open(datafile, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		if err == bolt.ErrTimeout {
			return nil, errors.New("cannot obtain database lock, database may be in use by another process")
		}
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(clientsBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db, databasePath: datafile}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// DatabasePath at which this database writes files.
func (s *BoltStore) DatabasePath() string {
	return s.databasePath
}

func (s *BoltStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		enc := tx.Bucket(clientsBucket).Get(key)
		if enc == nil {
			return ErrNotFound
		}
		var err error
		value, err = snappy.Decode(nil, enc)
		return err
	})
	return value, err
}

func (s *BoltStore) Has(key []byte) (bool, error) {
	var has bool
	err := s.db.View(func(tx *bolt.Tx) error {
		has = tx.Bucket(clientsBucket).Get(key) != nil
		return nil
	})
	return has, err
}

func (s *BoltStore) Set(key, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(clientsBucket).Put(key, snappy.Encode(nil, value))
	})
}

func (s *BoltStore) Delete(key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(clientsBucket).Delete(key)
	})
}

func (s *BoltStore) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(clientsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			value, err := snappy.Decode(nil, v)
			if err != nil {
				return errors.Wrapf(err, "could not decode value at %x", k)
			}
			if !fn(append([]byte{}, k...), value) {
				return nil
			}
		}
		return nil
	})
}

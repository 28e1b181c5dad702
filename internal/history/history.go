// Package history keeps a log of extension builds in a BoltDB file.
//
// The log is write-mostly: each build appends one Record with the exact
// cmake argv, how far it got and what it left in the output directory. It is
// never consulted to skip or short-circuit a build.
package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DBFile is the database file name inside the history directory
	DBFile = "history.db"

	// bucketName is the BoltDB bucket name for build records
	bucketName = "builds"
)

// Store manages build records using BoltDB
type Store struct {
	db   *bbolt.DB
	root string
}

// Open opens or creates the history database in dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	return &Store{db: db, root: dir}, nil
}

// Close closes the history database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Append stores rec under a new sequence number and returns it
func (s *Store) Append(rec *Record) (uint64, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		id, err := b.NextSequence()
		if err != nil {
			return err
		}

		rec.ID = id

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put(itob(id), data)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store build record: %w", err)
	}

	return rec.ID, nil
}

// List returns up to limit records, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(bucketName)).Cursor()

		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(records) >= limit {
				break
			}

			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt record %d: %w", binary.BigEndian.Uint64(k), err)
			}

			records = append(records, rec)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Get returns the record with the given id, or nil if there is none
func (s *Store) Get(id uint64) (*Record, error) {
	var rec *Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get(itob(id))
		if data == nil {
			return nil
		}

		rec = &Record{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Clear removes all records
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
}

// Count returns the number of stored records
func (s *Store) Count() (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})

	return count, err
}

// Path returns the database file path
func (s *Store) Path() string {
	return filepath.Join(s.root, DBFile)
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)

	return b
}

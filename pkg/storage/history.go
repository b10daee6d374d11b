// Package storage keeps a bounded log of recent calculations in a bbolt
// database so the web UI can show what was computed before.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	bolt "go.etcd.io/bbolt"
)

var historyBucket = []byte("history")

const defaultLimit = 200

// Entry is one recorded calculation.
type Entry struct {
	Kind        string    `json:"kind"`
	Principal   float64   `json:"principal"`
	RatePercent float64   `json:"rate_percent"`
	Years       float64   `json:"years"`
	Compounding string    `json:"compounding"`
	Result      float64   `json:"result"`
	Formatted   string    `json:"formatted"`
	At          time.Time `json:"at"`
}

// Store is an append-only calculation log with bounded retention.
type Store struct {
	db    *bolt.DB
	limit int
}

// Open opens (or creates) the history database at the given path.
func Open(path string) (*Store, error) {
	return open(path, defaultLimit)
}

func open(path string, limit int) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(historyBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, limit: limit}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a calculation and prunes the oldest entries once the store
// exceeds its retention limit.
func (s *Store) Append(entry Entry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "failed to encode history entry")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(historyBucket)

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		if err := bucket.Put(key, encoded); err != nil {
			return err
		}

		count := 0
		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			count++
		}

		excess := count - s.limit
		if excess <= 0 {
			return nil
		}

		stale := make([][]byte, 0, excess)
		for k, _ := cursor.First(); k != nil && len(stale) < excess; k, _ = cursor.Next() {
			key := make([]byte, len(k))
			copy(key, k)
			stale = append(stale, key)
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		return nil
	})
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	result := make([]Entry, 0, n)

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(historyBucket).Cursor()

		for k, v := cursor.Last(); k != nil && len(result) < n; k, v = cursor.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return eris.Wrap(err, "failed to decode history entry")
			}

			result = append(result, entry)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

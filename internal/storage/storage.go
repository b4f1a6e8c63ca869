// Package storage keeps an append-only journal of saved recipes and their
// predictions in BoltDB, so they can be audited or fed back to the trainer.
package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"recept-slider/internal/common"
	"recept-slider/internal/recipe"
)

const predictionsBucket = "predictions"

// Entry is one journaled recipe.
type Entry struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	RecordedAt   time.Time          `json:"recorded_at"`
	Percentages  recipe.Percentages `json:"percentages"`
	Masses       recipe.Masses      `json:"masses"`
	Prediction   recipe.Prediction  `json:"prediction"`
	ModelVersion string             `json:"model_version,omitempty"`
}

// Store is the prediction journal.
type Store struct {
	db *bbolt.DB
}

// New opens or creates the journal file inside dataPath.
func New(dataPath string) (*Store, error) {
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataPath, common.JournalFileName)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// entryKey orders entries by time. The timestamp is zero padded so byte order
// matches time order.
func entryKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%019d_%s", nanos(ts), id))
}

// nanos clamps t to the range the journal keys can represent.
func nanos(t time.Time) int64 {
	switch {
	case t.Before(time.Unix(0, 0)):
		return 0
	case t.After(maxTime):
		return maxTime.UnixNano()
	}
	return t.UnixNano()
}

var maxTime = time.Unix(0, math.MaxInt64-1)

// Record appends e to the journal. A zero RecordedAt is set to now.
func (s *Store) Record(e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return b.Put(entryKey(e.RecordedAt, e.ID), data)
	})
}

// Range returns the entries recorded between start and end, inclusive, oldest
// first. Malformed records are skipped.
func (s *Store) Range(start, end time.Time) ([]Entry, error) {
	var entries []Entry

	startKey := []byte(fmt.Sprintf("%019d", nanos(start)))
	endKey := []byte(fmt.Sprintf("%019d", nanos(end)+1))

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(predictionsBucket)).Cursor()
		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) < 0; k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})

	return entries, err
}

// Count is the number of journaled entries.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(predictionsBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	apperrors "market-node/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Optimistic transactions may conflict when the send path and the incoming
// loop touch the same key, the whole closure is then replayed.
const maxConflictRetries = 5

func update(db *badger.DB, fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func getJSON[T any](txn *badger.Txn, key string) (T, error) {
	var value T
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return value, fmt.Errorf("%w: %s", apperrors.ErrNotFound, key)
	}
	if err != nil {
		return value, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &value)
	})
	return value, err
}

func setJSON(txn *badger.Txn, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(key), data)
}

func getString(txn *badger.Txn, key string) (string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrNotFound, key)
	}
	if err != nil {
		return "", err
	}
	value, err := item.ValueCopy(nil)
	return string(value), err
}

func findByKey[T any](db *badger.DB, key string) (T, error) {
	var value T
	err := db.View(func(txn *badger.Txn) error {
		var err error
		value, err = getJSON[T](txn, key)
		return err
	})
	return value, err
}

// findOrCreate stores the entity under key unless the key is already taken.
// It returns the stored entity and whether this call created it.
func findOrCreate[T any](db *badger.DB, key string, entity T) (T, bool, error) {
	var stored T
	var created bool
	err := update(db, func(txn *badger.Txn) error {
		existing, err := getJSON[T](txn, key)
		if err == nil {
			stored, created = existing, false
			return nil
		}
		if !apperrors.IsNotFound(err) {
			return err
		}
		if err = setJSON(txn, key, entity); err != nil {
			return err
		}
		stored, created = entity, true
		return nil
	})
	return stored, created, err
}

// scanJSON decodes every value stored under prefix, in key order.
func scanJSON[T any](db *badger.DB, prefix string, limit int) ([]T, error) {
	var values []T
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && len(values) == limit {
				break
			}
			var value T
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &value)
			})
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	return values, err
}

// padTime renders a time as a 19 digit zero padded key part,
// so lexicographical key order is chronological order.
func padTime(t time.Time) string {
	if t.IsZero() || t.UnixNano() < 0 {
		return fmt.Sprintf("%019d", 0)
	}
	return fmt.Sprintf("%019d", t.UnixNano())
}

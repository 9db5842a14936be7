package storage

import (
	"fmt"
	"log/slog"
	"market-node/domain"
	apperrors "market-node/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IMessageRepository interface {
	Save(record domain.TransportMessage) (domain.TransportMessage, bool, error)
	Get(msgID string, direction domain.Direction) (domain.TransportMessage, error)
	UpdateStatus(msgID string, direction domain.Direction, status domain.MessageStatus,
		mutate func(record *domain.TransportMessage)) (domain.TransportMessage, error)
	GetPendingBatch(limit int, now time.Time) ([]domain.TransportMessage, error)
	RecoverInterrupted() (int, error)
	List(limit int) ([]domain.TransportMessage, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// Records are stored under "msg:{direction}:{msgid}", an echo of a locally sent
// envelope is therefore a distinct INCOMING record.
func messageKey(msgID string, direction domain.Direction) string {
	return fmt.Sprintf("msg:%s:%s", direction, msgID)
}

// Pending incoming records are indexed under "msgq:{received_padded}:{msgid}"
// so a prefix scan yields them in receipt order.
func queueKey(record domain.TransportMessage) string {
	return fmt.Sprintf("msgq:%s:%s", padTime(record.Received), record.MsgID)
}

func inQueue(record domain.TransportMessage) bool {
	return record.Direction == domain.Incoming && !record.Status.IsTerminal()
}

// Save creates the record unless one already exists for the same transport id and direction.
// An existing record is returned untouched, except for zero timestamps which are backfilled.
func (m *MessageRepository) Save(record domain.TransportMessage) (domain.TransportMessage, bool, error) {
	var stored domain.TransportMessage
	var created bool
	err := update(m.db, func(txn *badger.Txn) error {
		key := messageKey(record.MsgID, record.Direction)
		existing, err := getJSON[domain.TransportMessage](txn, key)
		switch {
		case err == nil:
			var changed bool
			stored, changed = backfillTimes(existing, record)
			created = false
			if !changed {
				return nil
			}
			return setJSON(txn, key, stored)
		case !apperrors.IsNotFound(err):
			return err
		}
		if record.Status == "" {
			record.Status = domain.StatusNew
		}
		if err = setJSON(txn, key, record); err != nil {
			return err
		}
		if inQueue(record) {
			if err = txn.Set([]byte(queueKey(record)), []byte(record.MsgID)); err != nil {
				return err
			}
		}
		stored, created = record, true
		return nil
	})
	return stored, created, err
}

func backfillTimes(existing, incoming domain.TransportMessage) (domain.TransportMessage, bool) {
	changed := false
	if existing.Sent.IsZero() && !incoming.Sent.IsZero() {
		existing.Sent, changed = incoming.Sent, true
	}
	if existing.Expiration.IsZero() && !incoming.Expiration.IsZero() {
		existing.Expiration, changed = incoming.Expiration, true
	}
	return existing, changed
}

func (m *MessageRepository) Get(msgID string, direction domain.Direction) (domain.TransportMessage, error) {
	return findByKey[domain.TransportMessage](m.db, messageKey(msgID, direction))
}

// UpdateStatus moves a record to a new status atomically, enforcing the status state machine.
// mutate may adjust bookkeeping fields in the same transaction.
func (m *MessageRepository) UpdateStatus(msgID string, direction domain.Direction, status domain.MessageStatus,
	mutate func(record *domain.TransportMessage)) (domain.TransportMessage, error) {
	var stored domain.TransportMessage
	err := update(m.db, func(txn *badger.Txn) error {
		key := messageKey(msgID, direction)
		record, err := getJSON[domain.TransportMessage](txn, key)
		if err != nil {
			return err
		}
		next, err := record.Status.Transition(status)
		if err != nil {
			return fmt.Errorf("record %s: %w", msgID, err)
		}
		wasQueued := inQueue(record)
		record.Status = next
		if mutate != nil {
			mutate(&record)
		}
		if wasQueued && !inQueue(record) {
			if err = txn.Delete([]byte(queueKey(record))); err != nil {
				return err
			}
		}
		stored = record
		return setJSON(txn, key, record)
	})
	return stored, err
}

// GetPendingBatch returns up to limit incoming records ready to be processed at now, oldest receipt first:
// NEW records, and WAITING records whose next attempt is due or whose envelope expired.
func (m *MessageRepository) GetPendingBatch(limit int, now time.Time) ([]domain.TransportMessage, error) {
	var records []domain.TransportMessage
	err := m.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = limit
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte("msgq:")
		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(records) < limit; it.Next() {
			msgID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			record, err := getJSON[domain.TransportMessage](txn, messageKey(string(msgID), domain.Incoming))
			if err != nil {
				m.log.Warn("Dangling queue entry", "key", string(it.Item().Key()), "error", err)
				continue
			}
			if isDue(record, now) {
				records = append(records, record)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during batch fetch: %w", err)
	}
	return records, nil
}

func isDue(record domain.TransportMessage, now time.Time) bool {
	switch record.Status {
	case domain.StatusNew:
		return true
	case domain.StatusWaiting:
		return !now.Before(record.NextAttemptAt) || record.Expired(now)
	default:
		return false
	}
}

// RecoverInterrupted moves records left in PROCESSING by a crash back to WAITING.
func (m *MessageRepository) RecoverInterrupted() (int, error) {
	var interrupted []string
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("msgq:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			msgID, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			record, err := getJSON[domain.TransportMessage](txn, messageKey(string(msgID), domain.Incoming))
			if err != nil {
				continue
			}
			if record.Status == domain.StatusProcessing {
				interrupted = append(interrupted, record.MsgID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, msgID := range interrupted {
		if _, err = m.UpdateStatus(msgID, domain.Incoming, domain.StatusWaiting, func(r *domain.TransportMessage) {
			r.Reason = "interrupted while processing"
		}); err != nil {
			return 0, err
		}
		m.log.Warn("Recovered interrupted record", "msg_id", msgID)
	}
	return len(interrupted), nil
}

func (m *MessageRepository) List(limit int) ([]domain.TransportMessage, error) {
	return scanJSON[domain.TransportMessage](m.db, "msg:", limit)
}

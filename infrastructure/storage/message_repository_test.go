package storage

import (
	"log/slog"
	"market-node/domain"
	apperrors "market-node/errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens an in-memory Badger instance closed with the test.
func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func incoming(msgID string, received time.Time) domain.TransportMessage {
	return domain.NewIncomingMessage(domain.Envelope{
		MsgID:    msgID,
		From:     "alice",
		To:       "bob",
		Received: received,
		Payload:  []byte(`{"version":"0.3.0"}`),
	})
}

func TestMessageRepository_Save_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(setupTestDB(t), logs.GetLoggerFromLevel(slog.LevelError))
	now := time.Now().UTC()

	// Given a record saved once
	record := incoming("m1", now)
	stored, created, err := repo.Save(record)
	req.NoError(err)
	req.True(created)
	req.Equal(domain.StatusNew, stored.Status)

	// When the same transport id is delivered again with a backfilled expiration
	again := record
	again.Expiration = now.Add(time.Hour)
	stored, created, err = repo.Save(again)

	// Then no new record is created and only the zero timestamp is filled
	req.NoError(err)
	req.False(created)
	req.True(stored.Expiration.Equal(again.Expiration))

	records, err := repo.List(0)
	req.NoError(err)
	req.Len(records, 1)
}

func TestMessageRepository_Echo_Is_A_Distinct_Record(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(setupTestDB(t), logs.GetLoggerFromLevel(slog.LevelError))
	now := time.Now().UTC()

	outgoing := domain.TransportMessage{MsgID: "m1", Direction: domain.Outgoing, Status: domain.StatusNew, Sent: now}
	_, created, err := repo.Save(outgoing)
	req.NoError(err)
	req.True(created)

	_, created, err = repo.Save(incoming("m1", now))
	req.NoError(err)
	req.True(created)

	// Only the incoming record is queued
	batch, err := repo.GetPendingBatch(10, now)
	req.NoError(err)
	req.Len(batch, 1)
	req.Equal(domain.Incoming, batch[0].Direction)
}

func TestMessageRepository_GetPendingBatch_Orders_By_Receipt(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(setupTestDB(t), logs.GetLoggerFromLevel(slog.LevelError))
	now := time.Now().UTC()

	// Given records saved out of receipt order
	for _, r := range []domain.TransportMessage{
		incoming("late", now.Add(2*time.Second)),
		incoming("early", now),
		incoming("middle", now.Add(time.Second)),
	} {
		_, _, err := repo.Save(r)
		req.NoError(err)
	}

	// When fetching a batch
	batch, err := repo.GetPendingBatch(2, now.Add(time.Minute))

	// Then the oldest receipts come first, bounded by the limit
	req.NoError(err)
	req.Len(batch, 2)
	req.Equal("early", batch[0].MsgID)
	req.Equal("middle", batch[1].MsgID)
}

func TestMessageRepository_UpdateStatus(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(setupTestDB(t), logs.GetLoggerFromLevel(slog.LevelError))
	now := time.Now().UTC()
	_, _, err := repo.Save(incoming("m1", now))
	req.NoError(err)

	// An illegal transition is refused
	_, err = repo.UpdateStatus("m1", domain.Incoming, domain.StatusProcessed, nil)
	req.ErrorIs(err, apperrors.ErrInvalidTransition)

	// A waiting record is not due before its next attempt
	_, err = repo.UpdateStatus("m1", domain.Incoming, domain.StatusProcessing, func(r *domain.TransportMessage) {
		r.Attempts++
	})
	req.NoError(err)
	waiting, err := repo.UpdateStatus("m1", domain.Incoming, domain.StatusWaiting, func(r *domain.TransportMessage) {
		r.NextAttemptAt = now.Add(time.Minute)
	})
	req.NoError(err)
	req.Equal(1, waiting.Attempts)

	batch, err := repo.GetPendingBatch(10, now)
	req.NoError(err)
	req.Empty(batch)
	batch, err = repo.GetPendingBatch(10, now.Add(2*time.Minute))
	req.NoError(err)
	req.Len(batch, 1)

	// A terminal record leaves the queue
	_, err = repo.UpdateStatus("m1", domain.Incoming, domain.StatusProcessing, nil)
	req.NoError(err)
	_, err = repo.UpdateStatus("m1", domain.Incoming, domain.StatusProcessed, nil)
	req.NoError(err)
	batch, err = repo.GetPendingBatch(10, now.Add(2*time.Minute))
	req.NoError(err)
	req.Empty(batch)

	record, err := repo.Get("m1", domain.Incoming)
	req.NoError(err)
	req.Equal(domain.StatusProcessed, record.Status)
}

func TestMessageRepository_RecoverInterrupted(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(setupTestDB(t), logs.GetLoggerFromLevel(slog.LevelError))
	now := time.Now().UTC()

	// Given a record left in PROCESSING by a crash
	_, _, err := repo.Save(incoming("m1", now))
	req.NoError(err)
	_, err = repo.UpdateStatus("m1", domain.Incoming, domain.StatusProcessing, nil)
	req.NoError(err)

	// When recovering
	count, err := repo.RecoverInterrupted()

	// Then it is waiting and due again
	req.NoError(err)
	req.Equal(1, count)
	batch, err := repo.GetPendingBatch(10, now)
	req.NoError(err)
	req.Len(batch, 1)
	req.Equal(domain.StatusWaiting, batch[0].Status)
}

func TestMessageRepository_Get_Unknown(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(setupTestDB(t), logs.GetLoggerFromLevel(slog.LevelError))

	_, err := repo.Get("missing", domain.Incoming)
	req.True(apperrors.IsNotFound(err))
}

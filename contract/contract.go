//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"market-node/domain"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself, the supervisor restarts it.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used for logging during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Transport is the anonymous store-and-forward layer.
// Delivery is at-least-once: an envelope is handed out by Poll until it is acknowledged.
type Transport interface {
	Send(ctx context.Context, envelope domain.Envelope, options domain.SendOptions) (domain.SendReceipt, error)
	Poll(ctx context.Context, limit int) ([]domain.Envelope, error)
	Ack(ctx context.Context, msgIDs ...string) error
}

// NotificationSink receives notifications fire-and-forget.
type NotificationSink interface {
	Publish(ctx context.Context, notification domain.Notification) error
}

type IdentityChecker interface {
	IsLocalAddress(address string) (bool, error)
}

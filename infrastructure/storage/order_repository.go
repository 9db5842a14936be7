package storage

import (
	"market-node/domain"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IOrderRepository interface {
	FindOneByHash(hash string) (domain.Order, error)
	CreateIfAbsent(order domain.Order) (domain.Order, bool, error)
	UpdateItemStatus(orderHash, bidHash string, status domain.OrderItemStatus, now time.Time) (domain.Order, error)
	List(limit int) ([]domain.Order, error)
}

// OrderRepository stores orders under "order:{root bid hash}".
type OrderRepository struct {
	db *badger.DB
}

func NewOrderRepository(db *badger.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func orderKey(hash string) string {
	return "order:" + hash
}

func (r *OrderRepository) FindOneByHash(hash string) (domain.Order, error) {
	return findByKey[domain.Order](r.db, orderKey(hash))
}

func (r *OrderRepository) CreateIfAbsent(order domain.Order) (domain.Order, bool, error) {
	return findOrCreate(r.db, orderKey(order.Hash), order)
}

// UpdateItemStatus is a no-op when the item already has the given status.
func (r *OrderRepository) UpdateItemStatus(orderHash, bidHash string, status domain.OrderItemStatus, now time.Time) (domain.Order, error) {
	var stored domain.Order
	err := update(r.db, func(txn *badger.Txn) error {
		order, err := getJSON[domain.Order](txn, orderKey(orderHash))
		if err != nil {
			return err
		}
		stored = order
		for _, item := range order.Items {
			if item.BidHash == bidHash && item.Status == status {
				return nil
			}
		}
		stored = order.WithItemStatus(bidHash, status, now)
		return setJSON(txn, orderKey(orderHash), stored)
	})
	return stored, err
}

func (r *OrderRepository) List(limit int) ([]domain.Order, error) {
	return scanJSON[domain.Order](r.db, "order:", limit)
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Bid is one entity of a bid chain. The root is the MPA_BID, every other
// entity points to the one it follows through ParentHash.
type Bid struct {
	ID              uuid.UUID  `json:"id"`
	Hash            string     `json:"hash"`
	Type            ActionType `json:"type"`
	ParentHash      string     `json:"parent_hash,omitempty"`
	RootHash        string     `json:"root_hash"`
	Depth           int        `json:"depth"`
	ListingItemHash string     `json:"listing_item_hash"`
	Bidder          string     `json:"bidder"`
	Seller          string     `json:"seller"`
	Sender          string     `json:"sender"`
	Objects         []KeyValue `json:"objects,omitempty"`
	MsgID           string     `json:"msgid"`
	GeneratedAt     time.Time  `json:"generated_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (b Bid) IsRoot() bool {
	return b.Type == ActionBid
}

type OrderItemStatus string

const (
	OrderItemBidded        OrderItemStatus = "BIDDED"
	OrderItemAccepted      OrderItemStatus = "ACCEPTED"
	OrderItemRejected      OrderItemStatus = "REJECTED"
	OrderItemCancelled     OrderItemStatus = "CANCELLED"
	OrderItemEscrowLocked  OrderItemStatus = "ESCROW_LOCKED"
	OrderItemRefunded      OrderItemStatus = "REFUNDED"
	OrderItemComplete      OrderItemStatus = "COMPLETE"
	OrderItemUnknownStatus OrderItemStatus = "UNKNOWN"
)

var headStatus = map[ActionType]OrderItemStatus{
	ActionBid:     OrderItemBidded,
	ActionAccept:  OrderItemAccepted,
	ActionReject:  OrderItemRejected,
	ActionCancel:  OrderItemCancelled,
	ActionLock:    OrderItemEscrowLocked,
	ActionRefund:  OrderItemRefunded,
	ActionRelease: OrderItemComplete,
}

// OrderItemStatusFor derives the order item status from the chain head action type.
func OrderItemStatusFor(head ActionType) OrderItemStatus {
	if status, ok := headStatus[head]; ok {
		return status
	}
	return OrderItemUnknownStatus
}

var successors = map[ActionType][]ActionType{
	ActionBid:    {ActionAccept, ActionReject, ActionCancel},
	ActionAccept: {ActionLock, ActionCancel},
	ActionLock:   {ActionRelease, ActionRefund},
}

// CanFollow reports whether an action of type next may be appended after a head of type head.
func CanFollow(head, next ActionType) bool {
	return lo.Contains(successors[head], next)
}

func IsFinal(head ActionType) bool {
	return head.IsBidFamily() && len(successors[head]) == 0
}

type OrderItem struct {
	ListingItemHash string          `json:"listing_item_hash"`
	BidHash         string          `json:"bid_hash"`
	Status          OrderItemStatus `json:"status"`
}

type Order struct {
	ID        uuid.UUID       `json:"id"`
	Hash      string          `json:"hash"`
	Buyer     string          `json:"buyer"`
	Seller    string          `json:"seller"`
	Status    OrderItemStatus `json:"status"`
	Items     []OrderItem     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewOrder opens the order created by a root bid.
func NewOrder(bid Bid, now time.Time) Order {
	status := OrderItemStatusFor(bid.Type)
	return Order{
		ID:     uuid.New(),
		Hash:   bid.RootHash,
		Buyer:  bid.Bidder,
		Seller: bid.Seller,
		Status: status,
		Items: []OrderItem{{
			ListingItemHash: bid.ListingItemHash,
			BidHash:         bid.RootHash,
			Status:          status,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithItemStatus sets the status of the item of a bid chain and re-derives the order status.
func (o Order) WithItemStatus(bidHash string, status OrderItemStatus, now time.Time) Order {
	items := make([]OrderItem, len(o.Items))
	for i, item := range o.Items {
		if item.BidHash == bidHash {
			item.Status = status
		}
		items[i] = item
	}
	o.Items = items
	o.Status = DeriveOrderStatus(items)
	o.UpdatedAt = now
	return o
}

// DeriveOrderStatus is the common item status, or the least advanced one when items disagree.
func DeriveOrderStatus(items []OrderItem) OrderItemStatus {
	if len(items) == 0 {
		return OrderItemUnknownStatus
	}
	status := items[0].Status
	for _, item := range items[1:] {
		if item.Status != status {
			return OrderItemBidded
		}
	}
	return status
}

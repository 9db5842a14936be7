package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entities reference each other by hash, never by pointer.

type Market struct {
	ID          uuid.UUID `json:"id"`
	Hash        string    `json:"hash"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MarketType  string    `json:"market_type"`
	Region      string    `json:"region,omitempty"`
	ReceiveKey  string    `json:"receive_key"`
	PublishKey  string    `json:"publish_key"`
	Publisher   string    `json:"publisher"`
	MsgID       string    `json:"msgid"`
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListingItem struct {
	ID          uuid.UUID `json:"id"`
	Hash        string    `json:"hash"`
	Seller      string    `json:"seller"`
	Market      string    `json:"market"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       Price     `json:"price"`
	MsgID       string    `json:"msgid"`
	GeneratedAt time.Time `json:"generated_at"`
	PostedAt    time.Time `json:"posted_at"`
	ReceivedAt  time.Time `json:"received_at"`
	ExpiredAt   time.Time `json:"expired_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingPosting is the last time this node posted a listing item.
type ListingPosting struct {
	Hash     string    `json:"hash"`
	MsgID    string    `json:"msgid"`
	Fee      float64   `json:"fee"`
	PostedAt time.Time `json:"posted_at"`
}

// Comment forms a tree through ParentHash, it is not a chain.
type Comment struct {
	ID          uuid.UUID `json:"id"`
	Hash        string    `json:"hash"`
	ParentHash  string    `json:"parent_hash,omitempty"`
	Sender      string    `json:"sender"`
	Receiver    string    `json:"receiver"`
	Target      string    `json:"target"`
	Message     string    `json:"message"`
	CommentType string    `json:"comment_type"`
	MsgID       string    `json:"msgid"`
	GeneratedAt time.Time `json:"generated_at"`
	PostedAt    time.Time `json:"posted_at"`
	ReceivedAt  time.Time `json:"received_at"`
	ExpiredAt   time.Time `json:"expired_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Identity struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification describes a state change worth surfacing. It is never persisted.
type Notification struct {
	Event   ActionType `json:"event"`
	Payload any        `json:"payload"`
}

type MarketNotification struct {
	ID   uuid.UUID `json:"id"`
	Hash string    `json:"hash"`
	Name string    `json:"name"`
}

type ListingItemNotification struct {
	ID     uuid.UUID `json:"id"`
	Hash   string    `json:"hash"`
	Seller string    `json:"seller"`
	Market string    `json:"market"`
	Title  string    `json:"title"`
}

type CommentParentNotification struct {
	ID   uuid.UUID `json:"id"`
	Hash string    `json:"hash"`
}

type CommentAddNotification struct {
	ID          uuid.UUID                  `json:"id"`
	Hash        string                     `json:"hash"`
	Target      string                     `json:"target"`
	Sender      string                     `json:"sender"`
	Receiver    string                     `json:"receiver"`
	CommentType string                     `json:"comment_type"`
	Parent      *CommentParentNotification `json:"parent,omitempty"`
}

type BidNotification struct {
	ObjectID        uuid.UUID       `json:"object_id"`
	ObjectHash      string          `json:"object_hash"`
	Type            ActionType      `json:"type"`
	BidHash         string          `json:"bid_hash"`
	ListingItemHash string          `json:"listing_item_hash"`
	OrderStatus     OrderItemStatus `json:"order_status"`
}

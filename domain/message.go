package domain

import (
	"encoding/json"
	"fmt"

	"market-node/errors"
)

const ProtocolVersion = "0.3.0"

// ActionMessage is the action specific payload of a MarketplaceMessage.
type ActionMessage interface {
	Type() ActionType
	ContentHash() string
	GeneratedAt() int64
}

// MarketplaceMessage is the decoded application envelope.
type MarketplaceMessage struct {
	Version string
	Action  ActionMessage
}

type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type MarketAddMessage struct {
	ActionType  ActionType `json:"type"`
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description,omitempty" validate:"max=1000"`
	MarketType  string     `json:"market_type" validate:"required,oneof=MARKETPLACE STOREFRONT STOREFRONT_ADMIN"`
	Region      string     `json:"region,omitempty" validate:"max=32"`
	ReceiveKey  string     `json:"receive_key" validate:"required"`
	PublishKey  string     `json:"publish_key" validate:"required"`
	Generated   int64      `json:"generated"`
	Hash        string     `json:"hash"`
}

type Price struct {
	Currency              string `json:"currency" validate:"required,len=3"`
	BasePrice             int64  `json:"base_price" validate:"gte=0"`
	ShippingDomestic      int64  `json:"shipping_domestic,omitempty" validate:"gte=0"`
	ShippingInternational int64  `json:"shipping_international,omitempty" validate:"gte=0"`
}

type ListingItemAddMessage struct {
	ActionType  ActionType `json:"type"`
	Seller      string     `json:"seller" validate:"required,max=128"`
	Market      string     `json:"market" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=10000"`
	Category    string     `json:"category,omitempty" validate:"max=200"`
	Price       Price      `json:"price"`
	Generated   int64      `json:"generated"`
	Hash        string     `json:"hash"`
}

type CommentAddMessage struct {
	ActionType        ActionType `json:"type"`
	Sender            string     `json:"sender" validate:"required,max=128"`
	Receiver          string     `json:"receiver" validate:"max=128"`
	Target            string     `json:"target" validate:"required"`
	Message           string     `json:"message" validate:"required,max=1000"`
	CommentType       string     `json:"comment_type" validate:"required"`
	ParentCommentHash string     `json:"parent_comment_hash,omitempty"`
	Generated         int64      `json:"generated"`
	Hash              string     `json:"hash"`
}

// BidMessage is the root of a bid chain.
type BidMessage struct {
	ActionType      ActionType `json:"type"`
	ListingItemHash string     `json:"item" validate:"required"`
	Bidder          string     `json:"bidder" validate:"required,max=128"`
	Objects         []KeyValue `json:"objects,omitempty"`
	Generated       int64      `json:"generated"`
	Hash            string     `json:"hash"`
}

// BidChildMessage carries every chained bid action (accept, reject, cancel, lock, refund, release).
// BidHash names the chain root, ParentHash the action it follows.
type BidChildMessage struct {
	ActionType ActionType `json:"type"`
	BidHash    string     `json:"bid" validate:"required"`
	ParentHash string     `json:"parent" validate:"required"`
	Objects    []KeyValue `json:"objects,omitempty"`
	Generated  int64      `json:"generated"`
	Hash       string     `json:"hash"`
}

// UnknownActionMessage is what decoding yields for a well formed message with an unregistered type.
type UnknownActionMessage struct {
	ActionType ActionType `json:"type"`
}

func (m MarketAddMessage) Type() ActionType { return m.ActionType }

func (m MarketAddMessage) ContentHash() string { return m.Hash }

func (m MarketAddMessage) GeneratedAt() int64 { return m.Generated }

func (m ListingItemAddMessage) Type() ActionType { return m.ActionType }

func (m ListingItemAddMessage) ContentHash() string { return m.Hash }

func (m ListingItemAddMessage) GeneratedAt() int64 { return m.Generated }

func (m CommentAddMessage) Type() ActionType { return m.ActionType }

func (m CommentAddMessage) ContentHash() string { return m.Hash }

func (m CommentAddMessage) GeneratedAt() int64 { return m.Generated }

func (m BidMessage) Type() ActionType { return m.ActionType }

func (m BidMessage) ContentHash() string { return m.Hash }

func (m BidMessage) GeneratedAt() int64 { return m.Generated }

func (m BidChildMessage) Type() ActionType { return m.ActionType }

func (m BidChildMessage) ContentHash() string { return m.Hash }

func (m BidChildMessage) GeneratedAt() int64 { return m.Generated }

func (m UnknownActionMessage) Type() ActionType { return m.ActionType }

func (m UnknownActionMessage) ContentHash() string { return "" }

func (m UnknownActionMessage) GeneratedAt() int64 { return 0 }

type decoder func(raw json.RawMessage) (ActionMessage, error)

func decodeAs[T ActionMessage](raw json.RawMessage) (ActionMessage, error) {
	var action T
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, err
	}
	return action, nil
}

var decoders = map[ActionType]decoder{
	ActionMarketAdd:  decodeAs[MarketAddMessage],
	ActionListingAdd: decodeAs[ListingItemAddMessage],
	ActionCommentAdd: decodeAs[CommentAddMessage],
	ActionBid:        decodeAs[BidMessage],
	ActionAccept:     decodeAs[BidChildMessage],
	ActionReject:     decodeAs[BidChildMessage],
	ActionCancel:     decodeAs[BidChildMessage],
	ActionLock:       decodeAs[BidChildMessage],
	ActionRefund:     decodeAs[BidChildMessage],
	ActionRelease:    decodeAs[BidChildMessage],
}

type wireMessage struct {
	Version string          `json:"version"`
	Action  json.RawMessage `json:"action"`
}

func (m MarketplaceMessage) Encode() ([]byte, error) {
	if m.Action == nil {
		return nil, fmt.Errorf("%w: marketplace message without action", errors.ErrInvalidPayload)
	}
	action, err := json.Marshal(m.Action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireMessage{Version: m.Version, Action: action})
}

// DecodeMarketplaceMessage turns a raw transport payload into a MarketplaceMessage.
// A well formed message with an unregistered action type decodes to UnknownActionMessage,
// leaving the decision to the dispatcher.
func DecodeMarketplaceMessage(payload []byte) (MarketplaceMessage, error) {
	var wire wireMessage
	if err := json.Unmarshal(payload, &wire); err != nil {
		return MarketplaceMessage{}, fmt.Errorf("%w: %w", errors.ErrParsing, err)
	}
	if len(wire.Action) == 0 {
		return MarketplaceMessage{}, fmt.Errorf("%w: missing action", errors.ErrParsing)
	}
	var head struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(wire.Action, &head); err != nil {
		return MarketplaceMessage{}, fmt.Errorf("%w: %w", errors.ErrParsing, err)
	}
	if head.Type == "" {
		return MarketplaceMessage{}, fmt.Errorf("%w: missing action type", errors.ErrParsing)
	}
	decode, ok := decoders[head.Type]
	if !ok {
		return MarketplaceMessage{Version: wire.Version, Action: UnknownActionMessage{ActionType: head.Type}}, nil
	}
	action, err := decode(wire.Action)
	if err != nil {
		return MarketplaceMessage{}, fmt.Errorf("%w: %w", errors.ErrParsing, err)
	}
	return MarketplaceMessage{Version: wire.Version, Action: action}, nil
}

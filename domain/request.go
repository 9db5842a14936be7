package domain

// SendParams are the transport level parameters shared by every action request.
type SendParams struct {
	From          string `validate:"required,max=128"`
	To            string `validate:"omitempty,max=128"`
	DaysRetention int    `validate:"gte=0,lte=30"`
	EstimateFee   bool
	Paid          bool
}

// ActionRequest is the typed local input of an action.
type ActionRequest interface {
	ActionType() ActionType
	Params() *SendParams
}

type MarketAddRequest struct {
	SendParams
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=1000"`
	MarketType  string `validate:"required,oneof=MARKETPLACE STOREFRONT STOREFRONT_ADMIN"`
	Region      string `validate:"max=32"`
	ReceiveKey  string `validate:"required"`
	PublishKey  string `validate:"required"`
}

type ListingItemAddRequest struct {
	SendParams
	Market      string `validate:"required"`
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=10000"`
	Category    string `validate:"max=200"`
	Price       Price
}

type CommentAddRequest struct {
	SendParams
	Target            string `validate:"required"`
	Message           string `validate:"required,max=1000"`
	CommentType       string `validate:"required,oneof=LISTINGITEM_QUESTION_AND_ANSWERS PROPOSAL_QUESTION_AND_ANSWERS MARKETPLACE_COMMENT PRIVATE_MESSAGE"`
	ParentCommentHash string
}

type BidRequest struct {
	SendParams
	ListingItemHash string `validate:"required"`
	Objects         []KeyValue
}

// BidChildRequest asks for one chained action on the bid chain rooted at BidHash.
type BidChildRequest struct {
	SendParams
	Type    ActionType `validate:"required,oneof=MPA_ACCEPT MPA_REJECT MPA_CANCEL MPA_LOCK MPA_REFUND MPA_RELEASE"`
	BidHash string     `validate:"required"`
	Objects []KeyValue
}

func (r *MarketAddRequest) ActionType() ActionType { return ActionMarketAdd }
func (r *MarketAddRequest) Params() *SendParams { return &r.SendParams }

func (r *ListingItemAddRequest) ActionType() ActionType { return ActionListingAdd }
func (r *ListingItemAddRequest) Params() *SendParams { return &r.SendParams }

func (r *CommentAddRequest) ActionType() ActionType { return ActionCommentAdd }
func (r *CommentAddRequest) Params() *SendParams { return &r.SendParams }

func (r *BidRequest) ActionType() ActionType { return ActionBid }
func (r *BidRequest) Params() *SendParams { return &r.SendParams }

func (r *BidChildRequest) ActionType() ActionType { return r.Type }
func (r *BidChildRequest) Params() *SendParams { return &r.SendParams }

type SendStatus string

const (
	SendStatusSent          SendStatus = "SENT"
	SendStatusEstimatedOnly SendStatus = "ESTIMATED_ONLY"
	SendStatusFailed        SendStatus = "FAILED"
)

const (
	ResultSent    = "Sent."
	ResultNotSent = "Not Sent."
)

// SendResult is the typed outcome of an outgoing action.
// A SENT result with a ProjectionError is in flight on the network while the
// local projection failed.
type SendResult struct {
	Status          SendStatus
	Result          string
	MsgID           string
	Fee             float64
	Reason          string
	ProjectionError error
}

func (r SendResult) Partial() bool {
	return r.Status == SendStatusSent && r.ProjectionError != nil
}

func FailedResult(err error) SendResult {
	return SendResult{Status: SendStatusFailed, Result: ResultNotSent, Reason: err.Error()}
}

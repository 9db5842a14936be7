package runtime

import (
	"context"
	"errors"
	"market-node/contract"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/transport"
	"market-node/mocks"
	"market-node/runtime/workers"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const feePerKBDay = 0.5

func newSender(n *node, loopback *transport.Loopback) *Sender {
	sender := NewSender(n.registry, loopback, n.messages, nil, n.log, transport.DefaultDaysRetention)
	sender.now = func() time.Time { return n.now }
	return sender
}

func marketRequest() *domain.MarketAddRequest {
	return &domain.MarketAddRequest{
		SendParams: domain.SendParams{From: localAddress, To: sellerAddress, Paid: true, DaysRetention: 3},
		Name:       "garage sale",
		MarketType: "MARKETPLACE",
		ReceiveKey: "receive",
		PublishKey: "publish",
	}
}

func TestSender_Send_Projects_Locally_And_Echo_Is_Silent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	n := newNode(t, mocks.NewMockNotificationSink(ctrl))
	loopback := transport.NewLoopback(feePerKBDay)
	sender := newSender(n, loopback)

	// When the local node adds a market
	result, err := sender.Send(ctx, marketRequest())

	// Then it is sent and paid for
	req.NoError(err)
	req.Equal(domain.SendStatusSent, result.Status)
	req.Equal(domain.ResultSent, result.Result)
	req.NotEmpty(result.MsgID)
	req.Equal(3*feePerKBDay, result.Fee)
	req.False(result.Partial())

	// And the outgoing record is processed with the market projected
	outgoing, err := n.messages.Get(result.MsgID, domain.Outgoing)
	req.NoError(err)
	req.Equal(domain.StatusProcessed, outgoing.Status)
	req.Equal(domain.ActionMarketAdd, outgoing.ActionType)
	message, err := domain.DecodeMarketplaceMessage(outgoing.Payload)
	req.NoError(err)
	market, err := n.deps.Markets.FindOneByHash(message.Action.ContentHash())
	req.NoError(err)
	req.Equal("garage sale", market.Name)

	// When the network echoes the envelope back
	receiver := workers.NewTransportReceiver(loopback, n.messages, nil, nil, n.log, time.Second, 10)
	received, err := receiver.Receive(ctx)
	req.NoError(err)
	req.Equal(1, received)
	n.sweep(t)

	// Then the echo is a processed incoming record and no notification is published
	echo, err := n.messages.Get(result.MsgID, domain.Incoming)
	req.NoError(err)
	req.Equal(domain.StatusProcessed, echo.Status)
	markets, err := n.deps.Markets.List(10)
	req.NoError(err)
	req.Len(markets, 1)
}

func TestSender_Listing_Posting_Is_Recorded(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	n := newNode(t, mocks.NewMockNotificationSink(ctrl))
	loopback := transport.NewLoopback(feePerKBDay)

	// When the local node posts a listing item
	result, err := newSender(n, loopback).Send(context.Background(), &domain.ListingItemAddRequest{
		SendParams: domain.SendParams{From: localAddress, Paid: true, DaysRetention: 2},
		Market:     "market",
		Title:      "bike",
		Price:      domain.Price{Currency: "EUR", BasePrice: 100},
	})
	req.NoError(err)
	req.False(result.Partial())

	// Then the posting keeps the msgid and the fee paid
	outgoing, err := n.messages.Get(result.MsgID, domain.Outgoing)
	req.NoError(err)
	message, err := domain.DecodeMarketplaceMessage(outgoing.Payload)
	req.NoError(err)
	posting, err := n.deps.Listings.FindPosting(message.Action.ContentHash())
	req.NoError(err)
	req.Equal(result.MsgID, posting.MsgID)
	req.Equal(2*feePerKBDay, posting.Fee)
	req.True(posting.PostedAt.Equal(n.now))
}

func TestSender_Estimate_Sends_Nothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	n := newNode(t, mocks.NewMockNotificationSink(ctrl))
	loopback := transport.NewLoopback(feePerKBDay)
	sender := newSender(n, loopback)
	request := marketRequest()

	// When a fee is estimated
	fee, err := sender.Estimate(ctx, request)

	// Then the fee is known
	req.NoError(err)
	req.Equal(3*feePerKBDay, fee)
	req.False(request.EstimateFee)

	// And nothing reached the network nor the store
	pending, err := loopback.Poll(ctx, 10)
	req.NoError(err)
	req.Empty(pending)
	records, err := n.messages.List(10)
	req.NoError(err)
	req.Empty(records)

	// And an estimate-only send says so
	request.EstimateFee = true
	result, err := sender.Send(ctx, request)
	req.NoError(err)
	req.Equal(domain.SendStatusEstimatedOnly, result.Status)
	req.Equal(domain.ResultNotSent, result.Result)
	req.Empty(result.MsgID)
}

func TestSender_Invalid_Requests_Are_Not_Sent(t *testing.T) {
	tests := []struct {
		name    string
		request domain.ActionRequest
	}{
		{
			name: "missing market name",
			request: &domain.MarketAddRequest{
				SendParams: domain.SendParams{From: localAddress},
				MarketType: "MARKETPLACE",
				ReceiveKey: "receive",
				PublishKey: "publish",
			},
		},
		{
			name: "retention too long",
			request: &domain.MarketAddRequest{
				SendParams: domain.SendParams{From: localAddress, DaysRetention: 31},
				Name:       "garage sale",
				MarketType: "MARKETPLACE",
				ReceiveKey: "receive",
				PublishKey: "publish",
			},
		},
		{
			name:    "bid on an unknown listing",
			request: &domain.BidRequest{SendParams: domain.SendParams{From: localAddress}, ListingItemHash: "unknown"},
		},
		{
			name:    "accept an unknown bid",
			request: &domain.BidChildRequest{SendParams: domain.SendParams{From: localAddress}, Type: domain.ActionAccept, BidHash: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctx := context.Background()
			ctrl := gomock.NewController(t)
			n := newNode(t, mocks.NewMockNotificationSink(ctrl))
			loopback := transport.NewLoopback(feePerKBDay)

			result, err := newSender(n, loopback).Send(ctx, tt.request)

			req.Error(err)
			req.True(apperrors.IsValidation(err))
			req.Equal(domain.SendStatusFailed, result.Status)
			req.Equal(domain.ResultNotSent, result.Result)
			req.NotEmpty(result.Reason)
			pending, err := loopback.Poll(ctx, 10)
			req.NoError(err)
			req.Empty(pending)
		})
	}
}

func TestSender_Projection_Failure_Is_A_Partial_Success(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	n := newNode(t, mocks.NewMockNotificationSink(ctrl))
	loopback := transport.NewLoopback(feePerKBDay)
	request := marketRequest()
	message := domain.MarketplaceMessage{
		Version: domain.ProtocolVersion,
		Action:  domain.MarketAddMessage{ActionType: domain.ActionMarketAdd, Name: "garage sale", Hash: "hash"},
	}

	// Given a market service that cannot store what it sent
	market := service(ctrl, domain.ActionMarketAdd)
	market.EXPECT().CreateMarketplaceMessage(gomock.Any(), request).Return(message, nil)
	market.EXPECT().BeforePost(gomock.Any(), request, message).Return(message, nil)
	market.EXPECT().AfterPost(gomock.Any(), request, message, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.ActionRequest, _ domain.MarketplaceMessage,
			_ domain.TransportMessage, result domain.SendResult) (domain.SendResult, error) {
			return result, nil
		})
	market.EXPECT().ProcessMessage(gomock.Any(), message, domain.Outgoing, gomock.Any(), request).
		Return(domain.TransportMessage{}, apperrors.Projection(errors.New("disk full")))
	n.registry = NewRegistry()
	req.NoError(n.registry.Register(contract.Registration{Service: market}))

	// When the market is sent
	result, err := newSender(n, loopback).Send(ctx, request)

	// Then the caller learns it is on the network but not projected
	req.NoError(err)
	req.True(result.Partial())
	req.Equal(domain.SendStatusSent, result.Status)
	req.ErrorIs(result.ProjectionError, apperrors.ErrProjection)
	pending, err := loopback.Poll(ctx, 10)
	req.NoError(err)
	req.Len(pending, 1)

	// And the outgoing record keeps the failure
	outgoing, err := n.messages.Get(result.MsgID, domain.Outgoing)
	req.NoError(err)
	req.Equal(domain.StatusProcessingFailed, outgoing.Status)
	req.Contains(outgoing.Reason, "disk full")
}

func TestSender_Transport_Failure(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	n := newNode(t, mocks.NewMockNotificationSink(ctrl))
	network := mocks.NewMockTransport(ctrl)
	sender := NewSender(n.registry, network, n.messages, nil, n.log, transport.DefaultDaysRetention)

	// Given a transport that is unreachable
	network.EXPECT().Send(gomock.Any(), gomock.Any(), domain.SendOptions{DaysRetention: 3, Paid: true}).
		Return(domain.SendReceipt{}, errors.New("connection refused"))

	// When a market is sent
	result, err := sender.Send(ctx, marketRequest())

	// Then nothing is recorded
	req.ErrorIs(err, apperrors.ErrTransport)
	req.Equal(domain.SendStatusFailed, result.Status)
	records, err := n.messages.List(10)
	req.NoError(err)
	req.Empty(records)
}

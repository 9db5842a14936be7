package runtime

import (
	"errors"
	"market-node/contract"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/mocks"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func service(ctrl *gomock.Controller, actionType domain.ActionType) *mocks.MockActionService {
	s := mocks.NewMockActionService(ctrl)
	s.EXPECT().ActionType().Return(actionType).AnyTimes()
	return s
}

func TestRegistry_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	bid := service(ctrl, domain.ActionBid)
	validator := mocks.NewMockMessageValidator(ctrl)

	// When two action types are registered
	err := registry.Register(
		contract.Registration{Service: bid, Validator: validator},
		contract.Registration{Service: service(ctrl, domain.ActionAccept)},
	)

	// Then both are found
	req.NoError(err)
	registration, ok := registry.Lookup(domain.ActionBid)
	req.True(ok)
	req.Equal(bid, registration.Service)
	req.Equal(validator, registration.Validator)

	registration, ok = registry.Lookup(domain.ActionAccept)
	req.True(ok)
	req.Nil(registration.Validator)

	// And an unregistered type is not
	_, ok = registry.Lookup(domain.ActionRelease)
	req.False(ok)
}

func TestRegistry_Register_Twice_Same_Type(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	// Given a service registered for MPA_BID
	req.NoError(registry.Register(contract.Registration{Service: service(ctrl, domain.ActionBid)}))

	// When a second one is registered for the same type
	err := registry.Register(contract.Registration{Service: service(ctrl, domain.ActionBid)})

	// Then it is refused
	req.Error(err)
	req.True(errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestRegistry_Register_Without_Service(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.Error(registry.Register(contract.Registration{}))
	req.Empty(registry.Types())
}

func TestRegistry_Types_Sorted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()

	req.NoError(registry.Register(
		contract.Registration{Service: service(ctrl, domain.ActionRelease)},
		contract.Registration{Service: service(ctrl, domain.ActionAccept)},
		contract.Registration{Service: service(ctrl, domain.ActionBid)},
	))

	req.Equal([]domain.ActionType{domain.ActionAccept, domain.ActionBid, domain.ActionRelease}, registry.Types())
}

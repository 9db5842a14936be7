package runtime

import (
	"fmt"
	"market-node/contract"
	"market-node/domain"
	apperrors "market-node/errors"
	"sort"
	"sync"
)

// Registry maps an action type to the service and validator handling it.
// It is filled once at startup from a static table, lookups happen on every message.
type Registry struct {
	mu            sync.RWMutex
	registrations map[domain.ActionType]contract.Registration
}

func NewRegistry() *Registry {
	return &Registry{registrations: make(map[domain.ActionType]contract.Registration)}
}

// Register refuses a second registration for the same action type.
func (r *Registry) Register(registrations ...contract.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, registration := range registrations {
		if registration.Service == nil {
			return fmt.Errorf("registration without service")
		}
		actionType := registration.Service.ActionType()
		if _, ok := r.registrations[actionType]; ok {
			return fmt.Errorf("%w: service for %s", apperrors.ErrAlreadyExists, actionType)
		}
		r.registrations[actionType] = registration
	}
	return nil
}

func (r *Registry) Lookup(actionType domain.ActionType) (contract.Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, ok := r.registrations[actionType]
	return registration, ok
}

// Types lists the registered action types in lexical order.
func (r *Registry) Types() []domain.ActionType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.ActionType, 0, len(r.registrations))
	for actionType := range r.registrations {
		types = append(types, actionType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

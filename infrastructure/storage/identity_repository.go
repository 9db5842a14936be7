package storage

import (
	"fmt"
	"market-node/domain"
	apperrors "market-node/errors"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
)

// IdentityRepository holds the addresses owned by this node.
// Lookups are cached since every incoming notification asks for its sender.
type IdentityRepository struct {
	db    *badger.DB
	cache *lru.Cache[string, bool]
}

func NewIdentityRepository(db *badger.DB, cacheSize int) (*IdentityRepository, error) {
	cache, err := lru.New[string, bool](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("unable to create identity cache: %w", err)
	}
	return &IdentityRepository{db: db, cache: cache}, nil
}

func identityKey(address string) string {
	return "identity:" + address
}

func (r *IdentityRepository) Add(identity domain.Identity) (domain.Identity, error) {
	stored, _, err := findOrCreate(r.db, identityKey(identity.Address), identity)
	if err != nil {
		return domain.Identity{}, err
	}
	r.cache.Add(identity.Address, true)
	return stored, nil
}

func (r *IdentityRepository) IsLocalAddress(address string) (bool, error) {
	if address == "" {
		return false, nil
	}
	if local, ok := r.cache.Get(address); ok {
		return local, nil
	}
	_, err := findByKey[domain.Identity](r.db, identityKey(address))
	switch {
	case err == nil:
		r.cache.Add(address, true)
		return true, nil
	case apperrors.IsNotFound(err):
		r.cache.Add(address, false)
		return false, nil
	default:
		return false, err
	}
}

func (r *IdentityRepository) List() ([]domain.Identity, error) {
	return scanJSON[domain.Identity](r.db, "identity:", 0)
}

package storage

import (
	"fmt"
	"market-node/domain"
	apperrors "market-node/errors"

	"github.com/dgraph-io/badger/v4"
)

type AppendOutcome int

const (
	// AppendCreated means the bid was stored and is the new chain head.
	AppendCreated AppendOutcome = iota
	// AppendDuplicate means a bid with the same hash was already stored.
	AppendDuplicate
	// AppendStale means the parent exists but is no longer the chain head.
	AppendStale
)

func (o AppendOutcome) String() string {
	switch o {
	case AppendCreated:
		return "created"
	case AppendDuplicate:
		return "duplicate"
	case AppendStale:
		return "stale"
	default:
		return "unknown"
	}
}

// AppendResult carries the bid stored under the requested hash, or the current
// head when the append was stale.
type AppendResult struct {
	Outcome AppendOutcome
	Bid     domain.Bid
}

type IBidRepository interface {
	FindOneByHash(hash string) (domain.Bid, error)
	FindOneByParent(parentHash string) (domain.Bid, error)
	Head(rootHash string) (domain.Bid, error)
	GetChain(rootHash string) ([]domain.Bid, error)
	CreateRoot(bid domain.Bid) (AppendResult, error)
	AppendChild(bid domain.Bid) (AppendResult, error)
}

// BidRepository stores bid chains as an arena keyed by hash:
//
//	bid:{hash}                          the entity
//	bid_head:{root}                     hash of the current head
//	bid_child:{parent}                  hash of the bid following parent
//	bid_chain:{root}:{depth}            hash of the bid at depth
type BidRepository struct {
	db *badger.DB
}

func NewBidRepository(db *badger.DB) *BidRepository {
	return &BidRepository{db: db}
}

func bidKey(hash string) string {
	return "bid:" + hash
}

func bidHeadKey(root string) string {
	return "bid_head:" + root
}

func bidChildKey(parent string) string {
	return "bid_child:" + parent
}

func bidChainKey(bid domain.Bid) string {
	return fmt.Sprintf("bid_chain:%s:%06d", bid.RootHash, bid.Depth)
}

func (r *BidRepository) FindOneByHash(hash string) (domain.Bid, error) {
	return findByKey[domain.Bid](r.db, bidKey(hash))
}

func (r *BidRepository) FindOneByParent(parentHash string) (domain.Bid, error) {
	var bid domain.Bid
	err := r.db.View(func(txn *badger.Txn) error {
		hash, err := getString(txn, bidChildKey(parentHash))
		if err != nil {
			return err
		}
		bid, err = getJSON[domain.Bid](txn, bidKey(hash))
		return err
	})
	return bid, err
}

func (r *BidRepository) Head(rootHash string) (domain.Bid, error) {
	var head domain.Bid
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		head, err = headOf(txn, rootHash)
		return err
	})
	return head, err
}

func headOf(txn *badger.Txn, rootHash string) (domain.Bid, error) {
	hash, err := getString(txn, bidHeadKey(rootHash))
	if err != nil {
		return domain.Bid{}, err
	}
	return getJSON[domain.Bid](txn, bidKey(hash))
}

// GetChain returns the bids of a chain, root first.
func (r *BidRepository) GetChain(rootHash string) ([]domain.Bid, error) {
	var chain []domain.Bid
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(fmt.Sprintf("bid_chain:%s:", rootHash))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hash, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			bid, err := getJSON[domain.Bid](txn, bidKey(string(hash)))
			if err != nil {
				return err
			}
			chain = append(chain, bid)
		}
		return nil
	})
	return chain, err
}

// CreateRoot opens a new chain with a BID, or returns the existing one.
func (r *BidRepository) CreateRoot(bid domain.Bid) (AppendResult, error) {
	if !bid.IsRoot() {
		return AppendResult{}, apperrors.Validation("%s cannot open a bid chain", bid.Type)
	}
	var result AppendResult
	err := update(r.db, func(txn *badger.Txn) error {
		existing, err := getJSON[domain.Bid](txn, bidKey(bid.Hash))
		if err == nil {
			result = AppendResult{Outcome: AppendDuplicate, Bid: existing}
			return nil
		}
		if !apperrors.IsNotFound(err) {
			return err
		}
		bid.Depth = 0
		if err = r.link(txn, bid); err != nil {
			return err
		}
		result = AppendResult{Outcome: AppendCreated, Bid: bid}
		return nil
	})
	return result, err
}

// AppendChild adds a chained bid after its parent, in a single transaction:
// dedup by hash first, then the parent must exist and be the chain head,
// then the action type must be an allowed successor of the head.
func (r *BidRepository) AppendChild(bid domain.Bid) (AppendResult, error) {
	if bid.IsRoot() || bid.ParentHash == "" {
		return AppendResult{}, apperrors.Validation("%s %s has no parent", bid.Type, bid.Hash)
	}
	var result AppendResult
	err := update(r.db, func(txn *badger.Txn) error {
		existing, err := getJSON[domain.Bid](txn, bidKey(bid.Hash))
		if err == nil {
			result = AppendResult{Outcome: AppendDuplicate, Bid: existing}
			return nil
		}
		if !apperrors.IsNotFound(err) {
			return err
		}

		parent, err := getJSON[domain.Bid](txn, bidKey(bid.ParentHash))
		if apperrors.IsNotFound(err) {
			return apperrors.Transient("parent %s of %s not yet seen", bid.ParentHash, bid.Hash)
		}
		if err != nil {
			return err
		}
		if parent.RootHash != bid.RootHash {
			return apperrors.Validation("parent %s belongs to chain %s, not %s", parent.Hash, parent.RootHash, bid.RootHash)
		}

		head, err := headOf(txn, bid.RootHash)
		if err != nil {
			return err
		}
		if head.Hash != parent.Hash {
			result = AppendResult{Outcome: AppendStale, Bid: head}
			return nil
		}
		if !domain.CanFollow(head.Type, bid.Type) {
			return apperrors.Validation("%s cannot follow %s in chain %s", bid.Type, head.Type, bid.RootHash)
		}

		bid.ListingItemHash = parent.ListingItemHash
		bid.Bidder = parent.Bidder
		bid.Seller = parent.Seller
		bid.Depth = parent.Depth + 1
		if err = r.link(txn, bid); err != nil {
			return err
		}
		result = AppendResult{Outcome: AppendCreated, Bid: bid}
		return nil
	})
	return result, err
}

func (r *BidRepository) link(txn *badger.Txn, bid domain.Bid) error {
	if err := setJSON(txn, bidKey(bid.Hash), bid); err != nil {
		return err
	}
	if bid.ParentHash != "" {
		if err := txn.Set([]byte(bidChildKey(bid.ParentHash)), []byte(bid.Hash)); err != nil {
			return err
		}
	}
	if err := txn.Set([]byte(bidChainKey(bid)), []byte(bid.Hash)); err != nil {
		return err
	}
	return txn.Set([]byte(bidHeadKey(bid.RootHash)), []byte(bid.Hash))
}

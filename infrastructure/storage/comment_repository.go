package storage

import (
	"fmt"
	"market-node/domain"
	apperrors "market-node/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type ICommentRepository interface {
	FindOneByHash(hash string) (domain.Comment, error)
	FindByParent(parentHash string) ([]domain.Comment, error)
	CreateIfAbsent(comment domain.Comment) (domain.Comment, bool, error)
	UpdateTimes(hash string, posted, received, expired time.Time) (domain.Comment, error)
}

// CommentRepository stores comments under "comment:{hash}" and indexes replies
// under "comment_parent:{parent_hash}:{generated_padded}:{hash}".
type CommentRepository struct {
	db *badger.DB
}

func NewCommentRepository(db *badger.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func commentKey(hash string) string {
	return "comment:" + hash
}

func (r *CommentRepository) FindOneByHash(hash string) (domain.Comment, error) {
	return findByKey[domain.Comment](r.db, commentKey(hash))
}

func (r *CommentRepository) FindByParent(parentHash string) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(fmt.Sprintf("comment_parent:%s:", parentHash))
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hash, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			comment, err := getJSON[domain.Comment](txn, commentKey(string(hash)))
			if err != nil {
				return err
			}
			comments = append(comments, comment)
		}
		return nil
	})
	return comments, err
}

// CreateIfAbsent is the atomic find-or-create on the comment hash.
func (r *CommentRepository) CreateIfAbsent(comment domain.Comment) (domain.Comment, bool, error) {
	var stored domain.Comment
	var created bool
	err := update(r.db, func(txn *badger.Txn) error {
		existing, err := getJSON[domain.Comment](txn, commentKey(comment.Hash))
		if err == nil {
			stored, created = existing, false
			return nil
		}
		if !apperrors.IsNotFound(err) {
			return err
		}
		if err = setJSON(txn, commentKey(comment.Hash), comment); err != nil {
			return err
		}
		if comment.ParentHash != "" {
			parentKey := fmt.Sprintf("comment_parent:%s:%s:%s", comment.ParentHash, padTime(comment.GeneratedAt), comment.Hash)
			if err = txn.Set([]byte(parentKey), []byte(comment.Hash)); err != nil {
				return err
			}
		}
		stored, created = comment, true
		return nil
	})
	return stored, created, err
}

// UpdateTimes refreshes the transport times of a comment each time it is seen again.
func (r *CommentRepository) UpdateTimes(hash string, posted, received, expired time.Time) (domain.Comment, error) {
	var stored domain.Comment
	err := update(r.db, func(txn *badger.Txn) error {
		comment, err := getJSON[domain.Comment](txn, commentKey(hash))
		if err != nil {
			return err
		}
		comment.PostedAt = posted
		comment.ReceivedAt = received
		comment.ExpiredAt = expired
		stored = comment
		return setJSON(txn, commentKey(hash), comment)
	})
	return stored, err
}

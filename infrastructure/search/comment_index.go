package search

import (
	"context"
	"fmt"
	"log/slog"
	"market-node/domain"

	"github.com/blugelabs/bluge"
)

const (
	fieldID      = "_id"
	fieldTarget  = "target"
	fieldType    = "comment_type"
	fieldSender  = "sender"
	fieldMessage = "message"
)

const (
	defaultLimit = 50
	maximumLimit = 500
)

// CommentIndex is the full-text index of comments. Hashes are the document ids,
// the comments themselves stay in the badger store.
type CommentIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewCommentIndex(writer *bluge.Writer, log *slog.Logger) *CommentIndex {
	return &CommentIndex{writer: writer, log: log}
}

// Index is idempotent, indexing the same hash twice replaces the document.
func (c *CommentIndex) Index(comment domain.Comment) error {
	doc := bluge.NewDocument(comment.Hash).
		AddField(bluge.NewKeywordField(fieldTarget, comment.Target)).
		AddField(bluge.NewKeywordField(fieldType, comment.CommentType)).
		AddField(bluge.NewKeywordField(fieldSender, comment.Sender)).
		AddField(bluge.NewTextField(fieldMessage, comment.Message))
	if err := c.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("unable to index comment %s: %w", comment.Hash, err)
	}
	return nil
}

type Query struct {
	Target      string
	CommentType string
	Terms       string
	Limit       int
}

// Search returns the hashes of the comments matching the query, best match first.
func (c *CommentIndex) Search(ctx context.Context, query Query) ([]string, error) {
	reader, err := c.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("unable to open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			c.log.Warn("Unable to close index reader", "error", err)
		}
	}()

	q := bluge.NewBooleanQuery()
	if query.Target != "" {
		q.AddMust(bluge.NewTermQuery(query.Target).SetField(fieldTarget))
	}
	if query.CommentType != "" {
		q.AddMust(bluge.NewTermQuery(query.CommentType).SetField(fieldType))
	}
	if query.Terms != "" {
		q.AddMust(bluge.NewMatchQuery(query.Terms).SetField(fieldMessage))
	}
	if query.Target == "" && query.CommentType == "" && query.Terms == "" {
		q.AddMust(bluge.NewMatchAllQuery())
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit(query.Limit), q))
	if err != nil {
		return nil, fmt.Errorf("comment search failed: %w", err)
	}
	var hashes []string
	match, err := matches.Next()
	for err == nil && match != nil {
		if visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				hashes = append(hashes, string(value))
				return false
			}
			return true
		}); visitErr != nil {
			return nil, visitErr
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("comment search failed: %w", err)
	}
	return hashes, nil
}

func limit(n int) int {
	switch {
	case n <= 0:
		return defaultLimit
	case n > maximumLimit:
		return maximumLimit
	default:
		return n
	}
}

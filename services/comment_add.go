package services

import (
	"context"
	"market-node/domain"
	apperrors "market-node/errors"
	"market-node/infrastructure/search"

	"github.com/google/uuid"
)

type CommentAddService struct {
	hooks
	deps    Deps
	builder NotificationBuilder
}

func NewCommentAddService(deps Deps) *CommentAddService {
	return &CommentAddService{hooks: hooks{log: deps.Log}, deps: deps, builder: NewNotificationBuilder(deps.Identities)}
}

func (s *CommentAddService) ActionType() domain.ActionType {
	return domain.ActionCommentAdd
}

func (s *CommentAddService) CreateMarketplaceMessage(_ context.Context, request domain.ActionRequest) (domain.MarketplaceMessage, error) {
	r, err := requestAs[*domain.CommentAddRequest](request)
	if err != nil {
		return domain.MarketplaceMessage{}, err
	}
	action := domain.CommentAddMessage{
		ActionType:        domain.ActionCommentAdd,
		Sender:            r.From,
		Receiver:          r.To,
		Target:            r.Target,
		Message:           r.Message,
		CommentType:       r.CommentType,
		ParentCommentHash: r.ParentCommentHash,
		Generated:         s.deps.now().UnixMilli(),
	}
	if action.Hash, err = domain.ContentHash(action); err != nil {
		return domain.MarketplaceMessage{}, err
	}
	return wrap(action), nil
}

// ProcessMessage creates the comment on first sighting. Later INCOMING
// sightings only refresh its transport times.
func (s *CommentAddService) ProcessMessage(_ context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage, _ domain.ActionRequest) (domain.TransportMessage, error) {
	action, err := actionAs[domain.CommentAddMessage](message)
	if err != nil {
		return record, err
	}
	record.ActionType = domain.ActionCommentAdd

	existing, err := s.deps.Comments.FindOneByHash(action.Hash)
	switch {
	case err == nil:
		if direction == domain.Incoming {
			if _, err = s.deps.Comments.UpdateTimes(existing.Hash, record.Sent, record.Received, record.Expiration); err != nil {
				return record, apperrors.Projection(err)
			}
		}
		return record, nil
	case !apperrors.IsNotFound(err):
		return record, apperrors.Projection(err)
	}

	if action.ParentCommentHash != "" {
		if err = exists(s.deps.Comments.FindOneByHash, action.ParentCommentHash, "parent comment"); err != nil {
			return record, err
		}
	}
	comment, created, err := s.deps.Comments.CreateIfAbsent(domain.Comment{
		ID:          uuid.New(),
		Hash:        action.Hash,
		ParentHash:  action.ParentCommentHash,
		Sender:      action.Sender,
		Receiver:    action.Receiver,
		Target:      action.Target,
		Message:     action.Message,
		CommentType: action.CommentType,
		MsgID:       record.MsgID,
		GeneratedAt: generatedAt(action),
		PostedAt:    record.Sent,
		ReceivedAt:  record.Received,
		ExpiredAt:   record.Expiration,
		CreatedAt:   s.deps.now(),
	})
	if err != nil {
		return record, apperrors.Projection(err)
	}
	if !created {
		return record, nil
	}
	s.deps.Log.Info("Comment added", "hash", comment.Hash, "target", comment.Target, "direction", direction)
	if s.deps.CommentIndex != nil {
		if err = s.deps.CommentIndex.Index(comment); err != nil {
			s.deps.Log.Warn("Comment not indexed", "hash", comment.Hash, "error", err)
		}
	}
	return record, nil
}

func (s *CommentAddService) CreateNotification(_ context.Context, message domain.MarketplaceMessage, direction domain.Direction,
	record domain.TransportMessage) (*domain.Notification, error) {
	comment, err := s.deps.Comments.FindOneByHash(message.Action.ContentHash())
	if err != nil {
		return nil, err
	}
	if !projectedBy(comment.MsgID, record) {
		return nil, nil
	}
	payload := domain.CommentAddNotification{
		ID:          comment.ID,
		Hash:        comment.Hash,
		Target:      comment.Target,
		Sender:      comment.Sender,
		Receiver:    comment.Receiver,
		CommentType: comment.CommentType,
	}
	if comment.ParentHash != "" {
		if parent, err := s.deps.Comments.FindOneByHash(comment.ParentHash); err == nil {
			payload.Parent = &domain.CommentParentNotification{ID: parent.ID, Hash: parent.Hash}
		}
	}
	return s.builder.Build(direction, comment.Sender, domain.ActionCommentAdd, payload)
}

// Search returns the stored comments matching a full-text query.
func (s *CommentAddService) Search(ctx context.Context, query search.Query) ([]domain.Comment, error) {
	if s.deps.CommentIndex == nil {
		return nil, apperrors.Validation("comment search is not enabled")
	}
	hashes, err := s.deps.CommentIndex.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(hashes))
	for _, hash := range hashes {
		comment, err := s.deps.Comments.FindOneByHash(hash)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func (s *CommentAddService) Replies(parentHash string) ([]domain.Comment, error) {
	return s.deps.Comments.FindByParent(parentHash)
}

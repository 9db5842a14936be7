package services

import (
	"market-node/contract"
	"market-node/domain"
)

// NotificationBuilder decides whether a projected entity is worth surfacing.
// Only INCOMING entities authored by someone else are.
type NotificationBuilder struct {
	identities contract.IdentityChecker
}

func NewNotificationBuilder(identities contract.IdentityChecker) NotificationBuilder {
	return NotificationBuilder{identities: identities}
}

// Build returns nil when the notification is suppressed.
// payload must already be the reduced view of the entity.
func (b NotificationBuilder) Build(direction domain.Direction, origin string,
	event domain.ActionType, payload any) (*domain.Notification, error) {
	if direction != domain.Incoming {
		return nil, nil
	}
	if b.identities != nil {
		local, err := b.identities.IsLocalAddress(origin)
		if err != nil {
			return nil, err
		}
		if local {
			return nil, nil
		}
	}
	return &domain.Notification{Event: event, Payload: payload}, nil
}

// projectedBy reports whether the entity was stored by this transport message.
// The same content delivered again under another msgid is not surfaced twice.
func projectedBy(entityMsgID string, record domain.TransportMessage) bool {
	return entityMsgID == record.MsgID
}

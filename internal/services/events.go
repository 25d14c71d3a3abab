package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/miaout11/forum-express-grading/pkg/logger"
)

// ActivityExchange is the topic exchange activity events are published to.
const ActivityExchange = "forum.activity"

// Activity event types, used as routing keys.
const (
	EventUserRegistered   = "user.registered"
	EventProfileUpdated   = "user.updated"
	EventFavoriteAdded    = "favorite.added"
	EventFavoriteRemoved  = "favorite.removed"
	EventLikeAdded        = "like.added"
	EventLikeRemoved      = "like.removed"
	EventFollowingAdded   = "following.added"
	EventFollowingRemoved = "following.removed"
	EventCommentPosted    = "comment.posted"
	EventRestaurantAdded  = "restaurant.created"
)

// EventPublisher publishes a message body under a routing key.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ActivityEvent is the payload of every published event.
type ActivityEvent struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// publishActivity sends an event when a publisher is configured. Failures are
// logged and never fail the calling operation.
func publishActivity(p EventPublisher, eventType, actorID, targetID string) {
	if p == nil {
		return
	}
	body, err := json.Marshal(ActivityEvent{
		Type:       eventType,
		ActorID:    actorID,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("failed to marshal activity event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := p.Publish(ActivityExchange, eventType, body); err != nil {
		logger.Warn("failed to publish activity event", zap.String("type", eventType), zap.String("actor", actorID), zap.Error(err))
	}
}

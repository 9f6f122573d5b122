package app

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"threads-accounts/internal/metrics"
	"threads-accounts/internal/model"
	"threads-accounts/internal/repository"
)

// FollowStore flips both sides of a follow edge as one unit.
type FollowStore interface {
	ToggleFollow(ctx context.Context, currentID, targetID primitive.ObjectID) (bool, error)
}

type FollowEventPublisher interface {
	PublishFollowEvent(ctx context.Context, event model.FollowEvent) error
}

type FollowService struct {
	store     FollowStore
	publisher FollowEventPublisher
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
	now       func() time.Time
}

type ToggleResult struct {
	Followed bool
}

func NewFollowService(store FollowStore, publisher FollowEventPublisher, m *metrics.Metrics, log logrus.FieldLogger) *FollowService {
	return &FollowService{
		store:     store,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (s *FollowService) ToggleFollow(ctx context.Context, currentUserID, targetID string) (*ToggleResult, error) {
	if targetID == currentUserID {
		return nil, ErrSelfFollow
	}

	currentOID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return nil, ErrNotFound
	}
	targetOID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, ErrNotFound
	}
	// Hex parsing is case-insensitive.
	if currentOID == targetOID {
		return nil, ErrSelfFollow
	}

	followed, err := s.store.ToggleFollow(ctx, currentOID, targetOID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrSelfReference):
			return nil, ErrSelfFollow
		}
		return nil, err
	}

	event := model.FollowEvent{
		Type:       model.FollowEventUnfollow,
		FollowerID: currentOID.Hex(),
		FolloweeID: targetOID.Hex(),
		OccurredAt: s.now().UTC(),
	}
	action := "unfollowed"
	if followed {
		event.Type = model.FollowEventFollow
		action = "followed"
	}
	s.metrics.ObserveToggle(action)

	if s.publisher != nil {
		if err := s.publisher.PublishFollowEvent(ctx, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"follower_id": currentUserID,
				"followee_id": targetID,
				"type":        event.Type,
			}).Warn("publish follow event failed")
		}
	}

	return &ToggleResult{Followed: followed}, nil
}

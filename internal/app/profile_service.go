package app

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"threads-accounts/internal/model"
)

type ProfileStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

type ProfileCache interface {
	GetByID(ctx context.Context, userID string) (*model.Profile, bool, error)
	GetByUsername(ctx context.Context, username string) (*model.Profile, bool, error)
	SetProfile(ctx context.Context, profile model.Profile) error
}

type ProfileService struct {
	users ProfileStore
	cache ProfileCache
	log   logrus.FieldLogger
}

func NewProfileService(users ProfileStore, cache ProfileCache, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{users: users, cache: cache, log: log}
}

// GetProfile resolves query as a user id when it is a valid ObjectID and as
// a username otherwise.
func (s *ProfileService) GetProfile(ctx context.Context, query string) (*model.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}

	id, parseErr := primitive.ObjectIDFromHex(query)
	byID := parseErr == nil

	if cached, ok := s.cached(ctx, query, id, byID); ok {
		return cached, nil
	}

	var (
		user *model.User
		err  error
	)
	if byID {
		user, err = s.users.FindByID(ctx, id)
	} else {
		user, err = s.users.FindByUsername(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	profile := user.Profile()
	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			s.log.WithError(err).WithField("user_id", profile.ID).Warn("write profile cache failed")
		}
	}
	return &profile, nil
}

func (s *ProfileService) cached(ctx context.Context, query string, id primitive.ObjectID, byID bool) (*model.Profile, bool) {
	if s.cache == nil {
		return nil, false
	}

	var (
		profile *model.Profile
		ok      bool
		err     error
	)
	if byID {
		profile, ok, err = s.cache.GetByID(ctx, id.Hex())
	} else {
		profile, ok, err = s.cache.GetByUsername(ctx, query)
	}
	if err != nil {
		s.log.WithError(err).WithField("query", query).Warn("read profile cache failed")
		return nil, false
	}
	return profile, ok
}

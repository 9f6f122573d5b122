package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"threads-accounts/internal/metrics"
	"threads-accounts/internal/model"
	"threads-accounts/internal/pkg/jwtutil"
	"threads-accounts/internal/repository"
)

type AccountStore interface {
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (*jwtutil.Claims, error)
	TTL() time.Duration
}

type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	users    AccountStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	sessions SessionStore
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token string
	User  model.PublicUser
}

func NewAuthService(
	users AccountStore,
	hasher PasswordHasher,
	tokens TokenIssuer,
	sessions SessionStore,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
		metrics:  m,
		log:      log,
	}
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	result, err := s.register(ctx, input)
	s.metrics.ObserveAuth("register", outcome(err))
	return result, err
}

func (s *AuthService) register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)
	if name == "" || email == "" || username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	// Profile lookups treat an ObjectID-shaped query as an id.
	if primitive.IsValidObjectID(username) {
		return nil, ErrInvalidInput
	}

	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Username: username,
		Password: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup on the unique index.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if user.ID.IsZero() {
		return nil, ErrInvalidInput
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("issue token failed: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "username": user.Username}).Info("user registered")
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	result, err := s.login(ctx, input)
	s.metrics.ObserveAuth("login", outcome(err))
	return result, err
}

func (s *AuthService) login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		return nil, err
	}

	// Compare runs even without a user so both failure paths take equal time.
	var hash string
	if user != nil {
		hash = user.Password
	}
	matched := s.hasher.Compare(hash, input.Password)
	if user == nil || !matched {
		return nil, ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, fmt.Errorf("issue token failed: %w", err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// Logout revokes the session token if it still parses. A missing or
// unparseable token has nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.logout(ctx, token)
	s.metrics.ObserveAuth("logout", outcome(err))
	return err
}

func (s *AuthService) logout(ctx context.Context, token string) error {
	if token == "" || s.sessions == nil {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("revoke session failed: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user id.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", ErrUnauthorized
	}
	if s.sessions != nil && claims.ID != "" {
		revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			return "", err
		}
		if revoked {
			return "", ErrUnauthorized
		}
	}
	return claims.UserID, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

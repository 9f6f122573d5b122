package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"threads-accounts/internal/app"
	"threads-accounts/internal/model"
	"threads-accounts/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input app.RegisterInput) (*app.AuthResult, error) {
	args := m.Called(ctx, input)
	if res := args.Get(0); res != nil {
		return res.(*app.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input app.LoginInput) (*app.AuthResult, error) {
	args := m.Called(ctx, input)
	if res := args.Get(0); res != nil {
		return res.(*app.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) TokenTTL() time.Duration {
	return time.Hour
}

type MockFollowService struct {
	mock.Mock
}

func (m *MockFollowService) ToggleFollow(ctx context.Context, currentUserID, targetID string) (*app.ToggleResult, error) {
	args := m.Called(ctx, currentUserID, targetID)
	if res := args.Get(0); res != nil {
		return res.(*app.ToggleResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context, query string) (*model.Profile, error) {
	args := m.Called(ctx, query)
	if res := args.Get(0); res != nil {
		return res.(*model.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	switch body := v.(type) {
	case string:
		return bytes.NewBufferString(body)
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		return bytes.NewBuffer(raw)
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

// withUser stands in for the cookie middleware.
func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	}
}

var errBoom = errors.New("connection reset by peer")

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"threads-accounts/internal/app"
	"threads-accounts/internal/transport/http/middleware"
	"threads-accounts/internal/transport/http/response"
)

type AuthService interface {
	Register(ctx context.Context, input app.RegisterInput) (*app.AuthResult, error)
	Login(ctx context.Context, input app.LoginInput) (*app.AuthResult, error)
	Logout(ctx context.Context, token string) error
	TokenTTL() time.Duration
}

type AuthHandler struct {
	authService  AuthService
	log          logrus.FieldLogger
	secureCookie bool
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService AuthService, log logrus.FieldLogger, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, log: log, secureCookie: secureCookie}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, response.MsgInvalidUserData)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrConflict):
			response.Message(c, http.StatusBadRequest, response.MsgUserExists)
		case errors.Is(err, app.ErrInvalidInput):
			response.Message(c, http.StatusBadRequest, response.MsgInvalidUserData)
		default:
			middleware.Logger(c, h.log).WithError(err).Error("Error in signup user")
			response.Message(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusCreated, result.User)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusUnauthorized, response.MsgInvalidCredentials)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, app.ErrUnauthorized) {
			response.Message(c, http.StatusUnauthorized, response.MsgInvalidCredentials)
			return
		}
		middleware.Logger(c, h.log).WithError(err).Error("Error in login user")
		response.Message(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.setSessionCookie(c, result.Token)
	c.JSON(http.StatusOK, result.User)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	h.clearSessionCookie(c)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		middleware.Logger(c, h.log).WithError(err).Error("Error in logout user")
		response.Message(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Message(c, http.StatusOK, response.MsgLoggedOut)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.authService.TokenTTL().Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.secureCookie, true)
}

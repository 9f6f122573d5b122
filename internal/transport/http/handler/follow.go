package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"threads-accounts/internal/app"
	"threads-accounts/internal/transport/http/middleware"
	"threads-accounts/internal/transport/http/response"
)

type FollowService interface {
	ToggleFollow(ctx context.Context, currentUserID, targetID string) (*app.ToggleResult, error)
}

type FollowHandler struct {
	followService FollowService
	log           logrus.FieldLogger
}

func NewFollowHandler(followService FollowService, log logrus.FieldLogger) *FollowHandler {
	return &FollowHandler{followService: followService, log: log}
}

// Toggle follows the user in the path, or unfollows when already following.
func (h *FollowHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, response.MsgUnauthorized)
		return
	}

	result, err := h.followService.ToggleFollow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSelfFollow):
			response.Error(c, http.StatusBadRequest, response.MsgSelfFollow)
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusBadRequest, response.MsgUserNotFound)
		default:
			middleware.Logger(c, h.log).WithError(err).Error("Error in followUnFollowUser")
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if result.Followed {
		response.Message(c, http.StatusOK, response.MsgFollowed)
		return
	}
	response.Message(c, http.StatusOK, response.MsgUnfollowed)
}

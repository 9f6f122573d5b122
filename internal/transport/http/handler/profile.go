package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"threads-accounts/internal/app"
	"threads-accounts/internal/model"
	"threads-accounts/internal/transport/http/middleware"
	"threads-accounts/internal/transport/http/response"
)

type ProfileService interface {
	GetProfile(ctx context.Context, query string) (*model.Profile, error)
}

type ProfileHandler struct {
	profileService ProfileService
	log            logrus.FieldLogger
}

func NewProfileHandler(profileService ProfileService, log logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, log: log}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("query"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotFound):
			response.Error(c, http.StatusNotFound, response.MsgUserNotFound)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.MsgInvalidQuery)
		default:
			middleware.Logger(c, h.log).WithError(err).Error("Error in getUserProfile")
			response.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}

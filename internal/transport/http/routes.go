package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"threads-accounts/internal/transport/http/handler"
	"threads-accounts/internal/transport/http/middleware"
)

// Authenticator is the part of the auth service the cookie middleware needs.
type Authenticator interface {
	handler.AuthService
	middleware.Authenticator
}

// Register mounts the user routes on router.
func Register(
	router gin.IRouter,
	auth Authenticator,
	follow handler.FollowService,
	profile handler.ProfileService,
	log logrus.FieldLogger,
	secureCookie bool,
) {
	authHandler := handler.NewAuthHandler(auth, log, secureCookie)
	followHandler := handler.NewFollowHandler(follow, log)
	profileHandler := handler.NewProfileHandler(profile, log)

	users := router.Group("/api/users")
	users.POST("/signup", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/logout", authHandler.Logout)
	users.GET("/profile/:query", profileHandler.Get)
	users.POST("/follow/:id", middleware.AuthCookie(auth), followHandler.Toggle)
}

package response

import "github.com/gin-gonic/gin"

const (
	MsgUserExists         = "User already exists"
	MsgInvalidUserData    = "Invalid user data"
	MsgInvalidCredentials = "Invalid username or password"
	MsgLoggedOut          = "User logged out"
	MsgUnauthorized       = "Unauthorized"
	MsgFollowed           = "User followed successfully"
	MsgUnfollowed         = "User unfollowed successfully"
	MsgSelfFollow         = "You cannot follow/unfollow yourself"
	MsgUserNotFound       = "User not found"
	MsgInvalidQuery       = "Invalid profile query"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Message writes {"message": msg}.
func Message(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, MessageResponse{Message: msg})
}

// Error writes {"error": msg}.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, ErrorResponse{Error: msg})
}

// AbortMessage writes {"message": msg} and stops the handler chain.
func AbortMessage(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, MessageResponse{Message: msg})
}

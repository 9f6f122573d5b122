package handler

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{3,32}$`)
	registerOnce    sync.Once
	registerErr     error
)

// RegisterValidators installs the custom binding rules on gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerErr = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return validUsername(fl.Field().String())
		})
	})
	return registerErr
}

// validUsername also rejects names that would read as a user id.
func validUsername(s string) bool {
	return usernamePattern.MatchString(s) && !primitive.IsValidObjectID(s)
}

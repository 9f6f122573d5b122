package app

import (
	"errors"
	"fmt"
)

var (
	ErrConflict     = errors.New("user already exists")
	ErrUnauthorized = errors.New("invalid username or password")
	ErrInvalidInput = errors.New("invalid user data")
	ErrNotFound     = errors.New("user not found")
	ErrSelfFollow   = fmt.Errorf("cannot follow/unfollow yourself: %w", ErrInvalidInput)
)

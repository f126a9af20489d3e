package services

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("user with this email already exists")
	ErrLogNotFound      = errors.New("log entry not found")
	ErrNoLogs           = errors.New("no logs found")
	ErrRoutineNotFound  = errors.New("routine not found")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following this user")
	ErrNotFollowing     = errors.New("not following this user")
	ErrValidation       = errors.New("validation failed")
)

package domain

import "errors"

var (
	// ErrNotFound indicates a record lookup miss.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownProvider indicates a provider name that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrAlreadyRegistered indicates a duplicate provider registration.
	ErrAlreadyRegistered = errors.New("provider already registered")

	// ErrCacheMiss indicates no snapshot exists for a provider.
	ErrCacheMiss = errors.New("snapshot cache miss")
)

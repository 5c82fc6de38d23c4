package service

import (
	"errors"

	"github.com/oplozada/estadistica/internal/adapters/repository"
)

// Sentinel errors returned by the service.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = errors.New("analysis queue is full")
	ErrLimit        = errors.New("matrix exceeds configured limits")
	ErrNotFound     = repository.ErrNotFound
)

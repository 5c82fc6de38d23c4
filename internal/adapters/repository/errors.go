package repository

import "errors"

// Sentinel errors returned by the analysis store.
var (
	ErrNotFound = errors.New("analysis not found")
	ErrExists   = errors.New("analysis already exists")
)

package repository

import "errors"

// ErrNoDatabase is returned when the service runs without POSTGRES_DSN.
var ErrNoDatabase = errors.New("postgres not configured")

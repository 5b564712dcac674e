package auth

import "errors"

var (
	// ErrUnauthorized covers every per-request refusal: missing, malformed,
	// forged or expired tokens as well as identities the cache does not
	// currently authorize.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrStoreUnavailable is returned when the authoritative identity set
	// cannot be fetched. It never reaches request handlers.
	ErrStoreUnavailable = errors.New("identity store unavailable")
	// ErrInternal wraps signing or encoding failures.
	ErrInternal = errors.New("internal auth error")
)

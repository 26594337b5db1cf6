package domain

import "errors"

var (
	// ErrInvalidTenant is returned when a request names a house outside the configured set.
	ErrInvalidTenant = errors.New("invalid house number")

	// ErrUnknownTenant is returned by history storage for a house it has no partition for.
	ErrUnknownTenant = errors.New("unknown house")
)

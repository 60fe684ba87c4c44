package store

import "errors"

var (
	errInvalidOffset = errors.New("store: offset must be a non-negative integer")
	errInvalidLimit  = errors.New("store: limit must be a non-negative integer")
)

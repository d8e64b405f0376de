package storage

import "errors"

// Storage errors shared by the candle accessor and the result stores.
var (
	// ErrNoSuchMarket is returned when the requested (exchange, market,
	// instrument type) series does not exist.
	ErrNoSuchMarket = errors.New("no such market")

	// ErrNoDataInRange is returned when a series exists but holds no bars
	// in the requested time range.
	ErrNoDataInRange = errors.New("no data in range")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists. Result stores are append-only.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

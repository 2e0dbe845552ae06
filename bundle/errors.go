package bundle

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound    = errors.New("bundle not found")
	ErrLoadFailed  = errors.New("load failed")
	ErrSaveFailed  = errors.New("save failed")
	ErrInvalidName = errors.New("invalid bundle name")
)

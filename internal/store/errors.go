package store

import "errors"

// ErrClosed is returned by a store after Close.
var ErrClosed = errors.New("store closed")

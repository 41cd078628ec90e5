package storage

import (
	"context"
	"errors"
)

// ErrUnavailable wraps backend failures of a Store (I/O errors, Redis down).
var ErrUnavailable = errors.New("storage unavailable")

// ErrCorrupt reports a persisted document that cannot be decoded.
var ErrCorrupt = errors.New("storage corrupt")

// Store is a string key/value store.
//
// Get reports found=false with a nil error for a missing key. Delete of a missing key is
// not an error. Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CompareDeleter is implemented by stores that can delete a key only while it still holds
// an expected value. The facade uses it when clearing a rejected credential so it never
// removes a newer credential written by another process sharing the store.
type CompareDeleter interface {
	CompareAndDelete(ctx context.Context, key, expected string) (deleted bool, err error)
}

// DeleteIfEqual uses CompareAndDelete when s supports it and falls back to a read-compare-
// delete sequence otherwise.
func DeleteIfEqual(ctx context.Context, s Store, key, expected string) (bool, error) {
	if cd, ok := s.(CompareDeleter); ok {
		return cd.CompareAndDelete(ctx, key, expected)
	}
	current, found, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !found || current != expected {
		return false, nil
	}
	if err := s.Delete(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

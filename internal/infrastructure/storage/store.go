package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("storage: key not found")
	ErrSealed   = errors.New("storage: record cannot be opened")
)

// Store is durable client-side key/value storage. Writes return only after the value is durable
// for the backend in question.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var hkdfInfo = []byte("hirepath session storage v1")

// Sealed encrypts every value with NaCl secretbox before handing it to the inner Store. The box
// key is derived from the configured secret with HKDF-SHA256.
type Sealed struct {
	inner Store
	key   [32]byte
}

func NewSealed(inner Store, secret string) (*Sealed, error) {
	if inner == nil {
		return nil, errors.New("storage: nil inner store")
	}
	if secret == "" {
		return nil, errors.New("storage: empty secret")
	}

	s := &Sealed{inner: inner}
	r := hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo)
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	box, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(box) < nonceSize+secretbox.Overhead {
		return nil, ErrSealed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	out, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrSealed
	}
	return out, nil
}

func (s *Sealed) Put(ctx context.Context, key string, value []byte) error {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	box := secretbox.Seal(nonce[:], value, &nonce, &s.key)
	return s.inner.Put(ctx, key, box)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

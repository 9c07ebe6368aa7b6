package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("storage: key not found")

// Store is the durable key-value port behind the client-held state
// (cart, filters, pending customer, auth record). Values are opaque bytes,
// in practice JSON documents.
type Store interface {
	// Get returns ErrNotFound when the key has never been set or was removed.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Remove is a no-op for missing keys.
	Remove(ctx context.Context, key string) error
	Close() error
}

// Keys used by the storefront.
const (
	KeyCart     = "carrito"
	KeyFilters  = "filters"
	KeyCustomer = "cliente"
	KeyAuth     = "auth"
)

// GetJSON loads key into v. A stored value that does not decode is
// reported as an error wrapping the decode failure, not ErrNotFound.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %q failed: %w", key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q failed: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

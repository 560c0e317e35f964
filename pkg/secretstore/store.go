// Package secretstore persists small string secrets scoped by a service name.
//
// The hub keeps its storage credentials here (see hub.CredentialsBroker) and
// the identity client keeps its serialized session here. Three backends are
// provided: the platform keychain, an encrypted sqlite file and memory.
package secretstore

import (
	"context"
	"errors"
)

// DefaultService scopes every key written by the SDK.
const DefaultService = "atria"

// ErrNotFound is returned by GetItem when the key has no value.
var ErrNotFound = errors.New("secretstore: not found")

// Store is the secret store contract. Implementations must treat a missing key
// on RemoveItem as success.
type Store interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// BatchSetter is implemented by stores that can write several keys atomically.
type BatchSetter interface {
	SetItems(ctx context.Context, items map[string]string) error
}

// SetItems writes items atomically when s supports it and one key at a time
// otherwise.
func SetItems(ctx context.Context, s Store, items map[string]string) error {
	if b, ok := s.(BatchSetter); ok {
		return b.SetItems(ctx, items)
	}

	for k, v := range items {
		if err := s.SetItem(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

// StoreError reports a failed operation against a backend.
type StoreError struct {
	Operation string // "get", "set", "remove"
	Service   string
	Key       string
	Err       error
}

func (e *StoreError) Error() string {
	msg := "secretstore: " + e.Operation + " " + e.Service + "/" + e.Key
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error { return e.Err }

package secretstore

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

// Keyring stores secrets in the platform keychain (macOS Keychain, Secret
// Service on Linux, Windows Credential Manager) under a service name.
type Keyring struct {
	service string
}

func NewKeyring(service string) *Keyring {
	if service == "" {
		service = DefaultService
	}
	return &Keyring{service: service}
}

func (k *Keyring) GetItem(_ context.Context, key string) (string, error) {
	v, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &StoreError{Operation: "get", Service: k.service, Key: key, Err: err}
	}
	return v, nil
}

func (k *Keyring) SetItem(_ context.Context, key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return &StoreError{Operation: "set", Service: k.service, Key: key, Err: err}
	}
	return nil
}

func (k *Keyring) RemoveItem(_ context.Context, key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return &StoreError{Operation: "remove", Service: k.service, Key: key, Err: err}
	}
	return nil
}

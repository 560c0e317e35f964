// Package sqlite is a secretstore backend for hosts without a usable keychain.
// Values are sealed with AES-256-GCM under a passphrase-derived key before
// they touch disk.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/cryptox"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
	_ "modernc.org/sqlite"
)

const saltName = "kdf_salt"

type Store struct {
	db      *sql.DB
	service string
	sealer  *cryptox.Sealer
}

var _ secretstore.Store = (*Store)(nil)
var _ secretstore.BatchSetter = (*Store)(nil)

// Open opens (creating if needed) the database at dsn, applies migrations and
// derives the sealing key from passphrase and the file's stored salt.
func Open(ctx context.Context, dsn, service, passphrase string) (*Store, error) {
	if service == "" {
		service = secretstore.DefaultService
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// modernc serialises writers per connection; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &Store{db: db, service: service}
	if err := s.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	salt, err := s.loadOrCreateSalt(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.sealer, err = cryptox.NewSealer(passphrase, salt)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) loadOrCreateSalt(ctx context.Context) ([]byte, error) {
	var salt []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE name = ?`, saltName).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load salt: %w", err)
	}

	salt, err = cryptox.NewSalt()
	if err != nil {
		return nil, err
	}

	// INSERT OR IGNORE then re-read so two racing openers agree on one salt
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO store_meta (name, value) VALUES (?, ?)`, saltName, salt); err != nil {
		return nil, fmt.Errorf("store salt: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE name = ?`, saltName).Scan(&salt); err != nil {
		return nil, fmt.Errorf("load salt: %w", err)
	}
	return salt, nil
}

// additional binds a sealed value to its row so values cannot be swapped between keys.
func (s *Store) additional(key string) []byte {
	return []byte(s.service + "/" + key)
}

func (s *Store) GetItem(ctx context.Context, key string) (string, error) {
	var sealed []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM secrets WHERE service = ? AND key = ?`, s.service, key,
	).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", secretstore.ErrNotFound
	}
	if err != nil {
		return "", &secretstore.StoreError{Operation: "get", Service: s.service, Key: key, Err: err}
	}

	plain, err := s.sealer.Open(sealed, s.additional(key))
	if err != nil {
		return "", &secretstore.StoreError{Operation: "get", Service: s.service, Key: key, Err: err}
	}
	return string(plain), nil
}

func (s *Store) SetItem(ctx context.Context, key, value string) error {
	return s.SetItems(ctx, map[string]string{key: value})
}

// SetItems writes every item in a single transaction.
func (s *Store) SetItems(ctx context.Context, items map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &secretstore.StoreError{Operation: "set", Service: s.service, Err: err}
	}
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	now := time.Now().UTC().Unix()
	for key, value := range items {
		sealed, err := s.sealer.Seal([]byte(value), s.additional(key))
		if err != nil {
			return &secretstore.StoreError{Operation: "set", Service: s.service, Key: key, Err: err}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO secrets (service, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (service, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			s.service, key, sealed, now,
		)
		if err != nil {
			return &secretstore.StoreError{Operation: "set", Service: s.service, Key: key, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &secretstore.StoreError{Operation: "set", Service: s.service, Err: err}
	}
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE service = ? AND key = ?`, s.service, key)
	if err != nil {
		return &secretstore.StoreError{Operation: "remove", Service: s.service, Key: key, Err: err}
	}
	return nil
}

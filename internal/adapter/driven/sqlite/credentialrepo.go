package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
	"github.com/ericfisherdev/profilepanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// It keeps a single row under model.CredentialKey. When a key is configured
// the value is sealed with AES-256-GCM before write and opened after read.
type CredentialRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores the credential unencrypted.
}

// NewCredentialRepo creates a new CredentialRepo. key must be 32 bytes for
// AES-256-GCM, or nil to store the credential in plaintext.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	return &CredentialRepo{db: db, key: key}
}

// Encrypted reports whether credentials are sealed before they are written.
func (r *CredentialRepo) Encrypted() bool {
	return r.key != nil
}

// Set stores credential, replacing any previously stored one.
func (r *CredentialRepo) Set(ctx context.Context, credential model.Credential) error {
	value := credential.String()
	encrypted := r.key != nil
	if encrypted {
		sealed, err := r.encrypt(value)
		if err != nil {
			return err
		}
		value = sealed
	}

	const query = `INSERT OR REPLACE INTO credentials (key, value, encrypted, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, model.CredentialKey, value, encrypted); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

// Get returns the stored credential, or ("", nil) if none is stored.
func (r *CredentialRepo) Get(ctx context.Context) (model.Credential, error) {
	const query = `SELECT value, encrypted FROM credentials WHERE key = ?`
	var (
		value     string
		encrypted bool
	)
	err := r.db.Reader.QueryRowContext(ctx, query, model.CredentialKey).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}

	if !encrypted {
		return model.Credential(value), nil
	}
	if r.key == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	plaintext, err := r.decrypt(value)
	if err != nil {
		return "", fmt.Errorf("decrypt credential: %w", err)
	}
	return model.Credential(plaintext), nil
}

// Clear removes the stored credential. Clearing an empty table succeeds.
func (r *CredentialRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM credentials WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, model.CredentialKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// encrypt encrypts plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *CredentialRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts a base64-encoded AES-256-GCM ciphertext.
func (r *CredentialRepo) decrypt(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

func (r *CredentialRepo) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}

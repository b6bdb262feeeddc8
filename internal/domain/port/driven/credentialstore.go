package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
)

// CredentialStore defines the driven port for the single-slot session
// credential. The adapter persists at most one credential; Set replaces any
// previous value and Clear is idempotent.
type CredentialStore interface {
	// Set stores credential, overwriting whatever was stored before.
	Set(ctx context.Context, credential model.Credential) error

	// Get returns the stored credential, or ("", nil) when none is stored.
	Get(ctx context.Context) (model.Credential, error)

	// Clear removes the stored credential. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}

// ErrEncryptionKeyNotSet is returned by CredentialStore.Get when the stored
// credential was written encrypted but no PROFILEPANEL_SECRET_KEY is configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set PROFILEPANEL_SECRET_KEY")

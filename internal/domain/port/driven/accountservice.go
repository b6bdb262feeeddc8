package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
)

// Failures reported by AccountService implementations. Adapters wrap them
// with detail; callers branch with errors.Is.
var (
	// ErrAuthenticationFailed is returned when the service rejects a login or signup.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUnauthorized is returned when an authenticated call is rejected
	// because the credential is invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRequestFailed covers every other non-success response and transport failure.
	ErrRequestFailed = errors.New("request failed")
)

// AccountService defines the driven port for the remote account service.
// Implementations are stateless, perform no retries and never touch the
// CredentialStore; persisting a credential is the caller's job.
type AccountService interface {
	// CreateSession exchanges an email and password for a session credential.
	CreateSession(ctx context.Context, login model.LoginCredentials) (model.Credential, error)

	// CreateAccount registers a new account and returns its first session credential.
	CreateAccount(ctx context.Context, account model.NewAccount) (model.Credential, error)

	// FetchSelf returns the profile of the user the credential belongs to.
	FetchSelf(ctx context.Context, credential model.Credential) (*model.Profile, error)

	// UpdateSelf applies a partial update to the credential owner's profile.
	UpdateSelf(ctx context.Context, credential model.Credential, update model.ProfileUpdate) error

	// EndSession invalidates the credential server-side.
	EndSession(ctx context.Context, credential model.Credential) error
}

// ServiceError carries the detail of a failed account-service call. Kind is
// one of the sentinel errors above, so errors.Is keeps working on wrapped
// values; Message holds the service's own error text, if any.
type ServiceError struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: %v (status %d)", e.Op, e.Kind, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %v (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
	"github.com/ericfisherdev/profilepanel/internal/domain/port/driven"
)

var (
	// ErrNotAuthenticated is returned by guarded operations when no
	// well-formed credential is stored. Callers redirect to the login page;
	// no request has been sent.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUpdateInProgress is returned when a profile update is submitted
	// while another one is still waiting for the account service.
	ErrUpdateInProgress = errors.New("profile update already in progress")
)

// SessionService owns the session lifecycle: it is the only component that
// writes the CredentialStore, and it guards every profile operation. It
// depends only on port interfaces.
type SessionService struct {
	store    driven.CredentialStore
	accounts driven.AccountService
	logger   *slog.Logger

	updating atomic.Bool
}

// NewSessionService creates a SessionService with the required dependencies.
func NewSessionService(store driven.CredentialStore, accounts driven.AccountService, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:    store,
		accounts: accounts,
		logger:   logger,
	}
}

// Current reads the stored credential and derives the session state. It never
// fails: a store error is logged and treated as anonymous, and a malformed
// stored value is cleared.
func (s *SessionService) Current(ctx context.Context) (model.Credential, model.SessionState) {
	credential, state, malformed := s.read(ctx)
	if malformed {
		s.logger.Warn("discarding malformed stored credential")
		s.invalidate(ctx)
	}
	return credential, state
}

// State returns only the session state. Unlike Current it never writes the
// store, so it is safe behind read-only endpoints.
func (s *SessionService) State(ctx context.Context) model.SessionState {
	_, state, _ := s.read(ctx)
	return state
}

// read classifies the stored credential without side effects. malformed is
// true when a value is stored but is not a bearer credential.
func (s *SessionService) read(ctx context.Context) (credential model.Credential, state model.SessionState, malformed bool) {
	credential, err := s.store.Get(ctx)
	if err != nil {
		s.logger.Warn("credential store unreadable, treating session as anonymous", "error", err)
		return "", model.SessionAnonymous, false
	}

	if credential == "" {
		return "", model.SessionAnonymous, false
	}

	if !credential.IsWellFormed() {
		return "", model.SessionAnonymous, true
	}

	return credential, model.SessionAuthenticated, false
}

// Guard is evaluated on entry to every protected view. It returns the
// credential to attach to the view's requests, or ErrNotAuthenticated.
func (s *SessionService) Guard(ctx context.Context) (model.Credential, error) {
	credential, state := s.Current(ctx)
	if state != model.SessionAuthenticated {
		return "", ErrNotAuthenticated
	}
	return credential, nil
}

// Login exchanges email and password for a credential and stores it,
// replacing any previous one. On failure the store is left untouched.
func (s *SessionService) Login(ctx context.Context, email, password string) error {
	login := model.LoginCredentials{Email: email, Password: password}
	if err := login.Validate(); err != nil {
		return err
	}

	credential, err := s.accounts.CreateSession(ctx, login)
	if err != nil {
		return err
	}

	return s.begin(ctx, credential)
}

// Signup registers an account and signs in with the credential it returns.
// Only the presence of email and password is checked locally.
func (s *SessionService) Signup(ctx context.Context, account model.NewAccount) error {
	if err := account.Validate(); err != nil {
		return err
	}

	credential, err := s.accounts.CreateAccount(ctx, account)
	if err != nil {
		return err
	}

	return s.begin(ctx, credential)
}

// Profile fetches the signed-in user's profile. An unauthorized response ends
// the local session before the error is returned.
func (s *SessionService) Profile(ctx context.Context) (*model.Profile, error) {
	credential, err := s.Guard(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.accounts.FetchSelf(ctx, credential)
	if err != nil {
		s.handleAuthFailure(ctx, err)
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies the non-empty form values to the profile. Both values
// empty is a ValidationError and nothing is sent. Only one update may be in
// flight at a time; a concurrent call gets ErrUpdateInProgress.
func (s *SessionService) UpdateProfile(ctx context.Context, firstName, lastName string) error {
	credential, err := s.Guard(ctx)
	if err != nil {
		return err
	}

	update := model.NewProfileUpdate(firstName, lastName)
	if update.IsEmpty() {
		return &model.ValidationError{Message: "enter a first name or a last name to update"}
	}

	if !s.updating.CompareAndSwap(false, true) {
		return ErrUpdateInProgress
	}
	defer s.updating.Store(false)

	if err := s.accounts.UpdateSelf(ctx, credential, update); err != nil {
		s.handleAuthFailure(ctx, err)
		return err
	}
	return nil
}

// SignOut ends the session on the service and then clears the local
// credential whether or not that succeeded, so an unreachable service can
// never leave the user stuck signed in. The remote failure is still returned;
// in that case the session may live on server-side.
func (s *SessionService) SignOut(ctx context.Context) error {
	credential, state := s.Current(ctx)
	if state != model.SessionAuthenticated {
		return s.clear(ctx)
	}

	remoteErr := s.accounts.EndSession(ctx, credential)
	if remoteErr != nil {
		s.logger.Warn("remote sign-out failed, clearing local session anyway", "error", remoteErr)
		remoteErr = fmt.Errorf("end session: %w", remoteErr)
	}

	return errors.Join(remoteErr, s.clear(ctx))
}

// begin is not bound to ctx cancellation: once the service has issued a
// credential it is kept even if the browser went away meanwhile.
func (s *SessionService) begin(ctx context.Context, credential model.Credential) error {
	if err := s.store.Set(context.WithoutCancel(ctx), credential); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	s.logger.Info("session started")
	return nil
}

// handleAuthFailure treats an unauthorized response like a sign-out.
func (s *SessionService) handleAuthFailure(ctx context.Context, err error) {
	if errors.Is(err, driven.ErrUnauthorized) {
		s.logger.Info("credential rejected by account service, ending local session")
		s.invalidate(ctx)
	}
}

// invalidate clears the credential, logging instead of failing.
func (s *SessionService) invalidate(ctx context.Context) {
	if err := s.clear(ctx); err != nil {
		s.logger.Error("failed to clear credential", "error", err)
	}
}

// clear is not bound to ctx cancellation: a credential the user asked to drop
// is dropped even if the request that asked went away.
func (s *SessionService) clear(ctx context.Context) error {
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

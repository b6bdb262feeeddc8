package application_test

import (
	"context"
	"sync"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
)

// fakeCredentialStore is an in-memory single-slot CredentialStore.
type fakeCredentialStore struct {
	mu         sync.Mutex
	credential model.Credential
	getErr     error
	setErr     error
	clearErr   error
	clears     int
}

func (f *fakeCredentialStore) Set(_ context.Context, credential model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.credential = credential
	return nil
}

func (f *fakeCredentialStore) Get(_ context.Context) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.credential, nil
}

func (f *fakeCredentialStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.credential = ""
	return nil
}

func (f *fakeCredentialStore) stored() model.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credential
}

// cancelAwareStore rejects writes made with a cancelled context, like a
// database driver would.
type cancelAwareStore struct {
	fakeCredentialStore
}

func (s *cancelAwareStore) Set(ctx context.Context, credential model.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.fakeCredentialStore.Set(ctx, credential)
}

// fakeAccountService records every call and keeps a profile so that updates
// are visible to later fetches.
type fakeAccountService struct {
	mu sync.Mutex

	sessionCred model.Credential
	sessionErr  error
	accountErr  error
	fetchErr    error
	updateErr   error
	endErr      error

	profile model.Profile

	// block, when non-nil, holds UpdateSelf until it is closed.
	block   chan struct{}
	entered chan struct{}

	logins      []model.LoginCredentials
	accounts    []model.NewAccount
	fetchCreds  []model.Credential
	updates     []model.ProfileUpdate
	updateCreds []model.Credential
	endCreds    []model.Credential
}

func (f *fakeAccountService) CreateSession(_ context.Context, login model.LoginCredentials) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, login)
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return f.sessionCred, nil
}

func (f *fakeAccountService) CreateAccount(_ context.Context, account model.NewAccount) (model.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts = append(f.accounts, account)
	if f.accountErr != nil {
		return "", f.accountErr
	}
	return f.sessionCred, nil
}

func (f *fakeAccountService) FetchSelf(_ context.Context, credential model.Credential) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCreds = append(f.fetchCreds, credential)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	p := f.profile
	return &p, nil
}

func (f *fakeAccountService) UpdateSelf(_ context.Context, credential model.Credential, update model.ProfileUpdate) error {
	f.mu.Lock()
	f.updates = append(f.updates, update)
	f.updateCreds = append(f.updateCreds, credential)
	block, entered := f.block, f.entered
	f.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.profile = update.Apply(f.profile)
	return nil
}

func (f *fakeAccountService) EndSession(_ context.Context, credential model.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endCreds = append(f.endCreds, credential)
	return f.endErr
}

func (f *fakeAccountService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logins) + len(f.accounts) + len(f.fetchCreds) + len(f.updates) + len(f.endCreds)
}

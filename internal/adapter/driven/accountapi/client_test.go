package accountapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/profilepanel/internal/adapter/driven/accountapi"
	"github.com/ericfisherdev/profilepanel/internal/domain/model"
	"github.com/ericfisherdev/profilepanel/internal/domain/port/driven"
	"github.com/ericfisherdev/profilepanel/internal/requestid"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *accountapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := accountapi.NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)

	return client
}

func ptr(s string) *string { return &s }

func TestCreateSession_Success(t *testing.T) {
	var gotBody map[string]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sessions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Authorization", "Bearer tok123")
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, handler)
	cred, err := client.CreateSession(context.Background(), model.LoginCredentials{Email: "a@b.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, model.Credential("Bearer tok123"), cred)
	assert.Equal(t, map[string]string{"email": "a@b.com", "password": "pw"}, gotBody)
}

func TestCreateSession_Rejected(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "Invalid credentials", status)
			})

			client := newTestClient(t, handler)
			cred, err := client.CreateSession(context.Background(), model.LoginCredentials{Email: "a@b.com", Password: "bad"})

			require.ErrorIs(t, err, driven.ErrAuthenticationFailed)
			assert.Empty(t, cred)

			var svcErr *driven.ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, status, svcErr.StatusCode)
			assert.Equal(t, "Invalid credentials", svcErr.Message)
		})
	}
}

func TestCreateSession_MissingAuthorizationHeader(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	client := newTestClient(t, handler)
	_, err := client.CreateSession(context.Background(), model.LoginCredentials{Email: "a@b.com", Password: "pw"})

	assert.ErrorIs(t, err, driven.ErrRequestFailed)
}

func TestCreateSession_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := accountapi.NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)
	server.Close()

	_, err = client.CreateSession(context.Background(), model.LoginCredentials{Email: "a@b.com", Password: "pw"})
	assert.ErrorIs(t, err, driven.ErrRequestFailed)
}

func TestCreateAccount(t *testing.T) {
	var got model.NewAccount
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/users", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Authorization", "Bearer newbie")
		w.WriteHeader(http.StatusCreated)
	})

	account := model.NewAccount{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "pw", PasswordConf: "pw"}
	client := newTestClient(t, handler)
	cred, err := client.CreateAccount(context.Background(), account)

	require.NoError(t, err)
	assert.Equal(t, model.Credential("Bearer newbie"), cred)
	assert.Equal(t, account, got)
}

func TestFetchSelf(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com"}`)
	})

	client := newTestClient(t, handler)
	profile, err := client.FetchSelf(context.Background(), "Bearer tok123")

	require.NoError(t, err)
	assert.Equal(t, &model.Profile{FirstName: "Ada", LastName: "Lovelace"}, profile)
}

func TestFetchSelf_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{status: http.StatusUnauthorized, want: driven.ErrUnauthorized},
		{status: http.StatusForbidden, want: driven.ErrUnauthorized},
		{status: http.StatusNotFound, want: driven.ErrRequestFailed},
		{status: http.StatusInternalServerError, want: driven.ErrRequestFailed},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})

			client := newTestClient(t, handler)
			profile, err := client.FetchSelf(context.Background(), "Bearer tok")

			assert.Nil(t, profile)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestFetchSelf_MalformedBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{not json`)
	})

	client := newTestClient(t, handler)
	_, err := client.FetchSelf(context.Background(), "Bearer tok")

	assert.ErrorIs(t, err, driven.ErrRequestFailed)
}

func TestUpdateSelf_OmitsAbsentFields(t *testing.T) {
	var raw map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/users/me", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, handler)
	err := client.UpdateSelf(context.Background(), "Bearer tok", model.ProfileUpdate{FirstName: ptr("X")})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"firstName": "X"}, raw)
}

func TestUpdateSelf_EmptyUpdateNeverSent(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, handler)
	err := client.UpdateSelf(context.Background(), "Bearer tok", model.ProfileUpdate{})

	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, calls)
}

func TestUpdateSelf_Unauthorized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client := newTestClient(t, handler)
	err := client.UpdateSelf(context.Background(), "Bearer tok", model.NewProfileUpdate("", "Y"))

	assert.ErrorIs(t, err, driven.ErrUnauthorized)
}

func TestEndSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/sessions/mine", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, handler)
	require.NoError(t, client.EndSession(context.Background(), "Bearer tok"))
}

func TestEndSession_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client := newTestClient(t, handler)
	err := client.EndSession(context.Background(), "Bearer tok")

	assert.ErrorIs(t, err, driven.ErrRequestFailed)
}

func TestBaseURLWithPathPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	client, err := accountapi.NewClientWithHTTPClient(server.Client(), server.URL+"/api/")
	require.NoError(t, err)

	require.NoError(t, client.EndSession(context.Background(), "Bearer tok"))
	assert.Equal(t, "/api/v1/sessions/mine", gotPath)
}

func TestNewClientWithHTTPClient_RejectsRelativeURL(t *testing.T) {
	_, err := accountapi.NewClientWithHTTPClient(http.DefaultClient, "/relative")
	assert.Error(t, err)
}

func TestNewClient_ForwardsRequestID(t *testing.T) {
	var gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(requestid.Header)
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	client := accountapi.NewClient(u, 5*time.Second)

	ctx := requestid.NewContext(context.Background(), "req-42")
	require.NoError(t, client.EndSession(ctx, "Bearer tok"))
	assert.Equal(t, "req-42", gotID)

	require.NoError(t, client.EndSession(context.Background(), "Bearer tok"))
	assert.NotEmpty(t, gotID)
	assert.NotEqual(t, "req-42", gotID)
}

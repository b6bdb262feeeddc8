// Package accountapi implements the AccountService port over the account
// service's JSON HTTP API.
package accountapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/profilepanel/internal/domain/model"
	"github.com/ericfisherdev/profilepanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountService = (*Client)(nil)

// maxErrorBody bounds how much of a failed response body is kept as the error message.
const maxErrorBody = 1 << 10

// Client implements driven.AccountService. It holds no session state: every
// authenticated call receives the credential from its caller.
type Client struct {
	http    *http.Client
	baseURL *url.URL
}

// NewClient creates a client for the service at baseURL with the following transport stack:
//  1. requestIDTransport (forwards the inbound X-Request-ID, or mints one)
//  2. http.DefaultTransport
//
// timeout bounds each call end to end.
func NewClient(baseURL *url.URL, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: &requestIDTransport{next: http.DefaultTransport},
		},
		baseURL: baseURL,
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Intended for tests that point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base URL %q is not absolute", baseURL)
	}
	return &Client{http: httpClient, baseURL: u}, nil
}

// CreateSession posts the login to /v1/sessions and returns the credential
// from the response's Authorization header.
func (c *Client) CreateSession(ctx context.Context, login model.LoginCredentials) (model.Credential, error) {
	return c.exchange(ctx, "create session", c.endpoint("v1", "sessions"), login)
}

// CreateAccount posts the signup to /v1/users and returns the credential the
// service issues for the new account.
func (c *Client) CreateAccount(ctx context.Context, account model.NewAccount) (model.Credential, error) {
	return c.exchange(ctx, "create account", c.endpoint("v1", "users"), account)
}

// FetchSelf returns the profile behind credential.
func (c *Client) FetchSelf(ctx context.Context, credential model.Credential) (*model.Profile, error) {
	const op = "fetch profile"

	resp, err := c.do(ctx, op, http.MethodGet, c.endpoint("v1", "users", "me"), credential, nil)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if err := authenticatedStatus(op, resp); err != nil {
		return nil, err
	}

	var profile model.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &driven.ServiceError{Kind: driven.ErrRequestFailed, Op: op, Message: "decode response: " + err.Error()}
	}
	return &profile, nil
}

// UpdateSelf patches the present fields of update onto the credential owner's
// profile. An update without any field is rejected before anything is sent.
func (c *Client) UpdateSelf(ctx context.Context, credential model.Credential, update model.ProfileUpdate) error {
	const op = "update profile"

	if update.IsEmpty() {
		return &model.ValidationError{Message: "nothing to update"}
	}

	resp, err := c.do(ctx, op, http.MethodPatch, c.endpoint("v1", "users", "me"), credential, update)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	return authenticatedStatus(op, resp)
}

// EndSession deletes the credential's session on the service.
func (c *Client) EndSession(ctx context.Context, credential model.Credential) error {
	const op = "end session"

	resp, err := c.do(ctx, op, http.MethodDelete, c.endpoint("v1", "sessions", "mine"), credential, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	return authenticatedStatus(op, resp)
}

// exchange posts body to endpoint and extracts a bearer credential from the
// response headers. Any non-2xx status is an authentication failure.
func (c *Client) exchange(ctx context.Context, op, endpoint string, body any) (model.Credential, error) {
	resp, err := c.do(ctx, op, http.MethodPost, endpoint, "", body)
	if err != nil {
		return "", err
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		return "", &driven.ServiceError{
			Kind:       driven.ErrAuthenticationFailed,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    readErrorBody(resp),
		}
	}

	credential := model.Credential(resp.Header.Get("Authorization"))
	if !credential.IsWellFormed() {
		return "", &driven.ServiceError{
			Kind:       driven.ErrRequestFailed,
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "response carried no bearer credential",
		}
	}
	return credential, nil
}

// do builds and sends one request. A non-empty credential is sent verbatim
// as the Authorization header; a non-nil body is encoded as JSON. Transport
// failures are reported as ErrRequestFailed.
func (c *Client) do(ctx context.Context, op, method, endpoint string, credential model.Credential, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", credential.String())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &driven.ServiceError{Kind: driven.ErrRequestFailed, Op: op, Message: err.Error()}
	}

	slog.Debug("account service call", "op", op, "method", method, "status", resp.StatusCode)
	return resp, nil
}

func (c *Client) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

// authenticatedStatus maps the status of an authenticated call: 401 and 403
// mean the credential is no good, anything else outside 2xx is a plain failure.
func authenticatedStatus(op string, resp *http.Response) error {
	switch {
	case isSuccess(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &driven.ServiceError{Kind: driven.ErrUnauthorized, Op: op, StatusCode: resp.StatusCode, Message: readErrorBody(resp)}
	default:
		return &driven.ServiceError{Kind: driven.ErrRequestFailed, Op: op, StatusCode: resp.StatusCode, Message: readErrorBody(resp)}
	}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func readErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// closeBody drains what is left of the body so the connection can be reused.
func closeBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

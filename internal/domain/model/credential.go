package model

import "strings"

// BearerPrefix is the scheme prefix every well-formed session credential carries.
const BearerPrefix = "Bearer "

// CredentialKey is the well-known key the session credential is persisted under.
const CredentialKey = "authorization"

// Credential is the opaque session credential issued by the account service,
// stored and sent verbatim in the Authorization header ("Bearer <token>").
type Credential string

// IsWellFormed reports whether the credential carries the bearer prefix. The
// token itself is opaque and only the account service can judge it. A
// malformed stored value is treated as no session at all.
func (c Credential) IsWellFormed() bool {
	return strings.HasPrefix(string(c), BearerPrefix)
}

// String returns the raw header value.
func (c Credential) String() string {
	return string(c)
}

// SessionState is the client-side view of whether a session credential is held.
type SessionState string

// SessionState values. There is no transitional state: a login either
// completes and stores a credential or leaves the state untouched.
const (
	SessionAnonymous     SessionState = "anonymous"
	SessionAuthenticated SessionState = "authenticated"
)

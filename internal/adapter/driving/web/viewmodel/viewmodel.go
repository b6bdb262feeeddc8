// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// NoticeKind selects how a notice is styled.
type NoticeKind string

// NoticeKind values.
const (
	NoticeInfo    NoticeKind = "info"
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the single user-visible message area shown at the top of every
// page. HTML is already rendered and sanitized.
type Notice struct {
	Kind NoticeKind
	HTML string
}

// IsZero reports whether there is nothing to show.
func (n Notice) IsZero() bool {
	return n.HTML == ""
}

// LoginViewModel holds the login form state. The password is never echoed back.
type LoginViewModel struct {
	Email string
}

// SignupViewModel holds the signup form state. Passwords are never echoed back.
type SignupViewModel struct {
	FirstName string
	LastName  string
	Email     string
}

// ProfileViewModel holds presentation-ready data for the profile view.
// Loaded is false when the profile could not be fetched.
type ProfileViewModel struct {
	DisplayName string
	FirstName   string
	LastName    string
	Loaded      bool
}

// UpdateViewModel holds the profile update form state.
type UpdateViewModel struct {
	FirstName string
	LastName  string
}

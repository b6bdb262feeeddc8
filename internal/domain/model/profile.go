package model

import "fmt"

// Profile is the signed-in user's profile as returned by the account service.
// It is never cached; every profile view fetches it again.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// DisplayName returns the name to greet the user with, falling back to
// whichever half of the name is present.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.LastName
	}
}

// ProfileUpdate is a partial profile change. A nil field is absent and is
// omitted from the request body rather than sent as an empty string.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

// NewProfileUpdate builds a ProfileUpdate from raw form values, mapping empty
// strings to absent fields.
func NewProfileUpdate(firstName, lastName string) ProfileUpdate {
	var u ProfileUpdate
	if firstName != "" {
		u.FirstName = &firstName
	}
	if lastName != "" {
		u.LastName = &lastName
	}
	return u
}

// IsEmpty reports whether no field is present.
func (u ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil
}

// Apply returns p with the present fields of u replaced.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	return p
}

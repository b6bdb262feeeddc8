package model

// LoginCredentials is the email/password pair exchanged for a session.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate rejects missing fields before anything is sent to the server.
func (c LoginCredentials) Validate() error {
	if c.Email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// NewAccount is a signup request. Beyond the presence of an email and a
// password, validation is left to the account service.
type NewAccount struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	PasswordConf string `json:"passwordConf"`
}

// Validate rejects a signup without an email or password.
func (a NewAccount) Validate() error {
	return LoginCredentials{Email: a.Email, Password: a.Password}.Validate()
}

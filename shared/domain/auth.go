package domain

// Credentials are submitted at login and never persisted.
type Credentials struct {
	Email    Email
	Password Password
}

const TokenTypeBearer = "bearer"

// AccessToken is the result of a successful login.
type AccessToken struct {
	Token string
	Type  string
}

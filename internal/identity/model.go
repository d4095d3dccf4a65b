package identity

import "time"

// User is a registered account. Password is stored as submitted.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

// Public returns the user with the password stripped.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// PublicUser is the user view returned to clients and embedded in tokens.
type PublicUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials is an exact-match lookup filter. Empty fields other than Email and
// Password are not part of the filter.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// RegisterInput carries the fields accepted on registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

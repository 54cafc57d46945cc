package domain

import "strings"

// User is an account record. Users are created once and never updated.
type User struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
}

// InsertUser holds the caller-supplied fields for a new user.
type InsertUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports missing fields. Usernames are compared verbatim, so only
// surrounding whitespace is rejected here.
func (u InsertUser) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(u.Username) == "" {
		errs = append(errs, FieldError{Field: "username", Message: "Username is required"})
	} else if u.Username != strings.TrimSpace(u.Username) {
		errs = append(errs, FieldError{Field: "username", Message: "Username must not start or end with whitespace"})
	}
	if u.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

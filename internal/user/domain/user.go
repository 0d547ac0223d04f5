package domain

import "time"

type ID string

type User struct {
	ID           ID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CredentialKind names the field a client authenticated with. It is resolved
// once at the HTTP boundary, so lookups never dispatch on field names at
// runtime.
type CredentialKind int

const (
	CredentialUsername CredentialKind = iota
	CredentialEmail
)

func (k CredentialKind) String() string {
	if k == CredentialEmail {
		return "email"
	}
	return "username"
}

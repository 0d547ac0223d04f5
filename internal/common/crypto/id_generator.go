package crypto

import "github.com/google/uuid"

// TokenGenerator produces the opaque identifiers used for access and
// refresh tokens. Random UUIDs are wide enough that collisions are handled
// by a single regenerate-and-retry at the store layer rather than prevented.
type TokenGenerator interface {
	NewToken() (string, error)
}

type IDGenerator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}

func (g *UUIDGenerator) NewToken() (string, error) {
	t, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// IsIdentifierShaped reports whether a presented value could be a token or
// entity identifier at all. Values that fail this check are treated exactly
// like values that are not in the store.
func IsIdentifierShaped(value string) bool {
	if value == "" {
		return false
	}
	_, err := uuid.Parse(value)
	return err == nil
}

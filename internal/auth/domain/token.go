package domain

import "time"

// Token is one live access/refresh pair. Both values are opaque random
// identifiers: possession of the stored value is the whole credential, there
// is nothing to verify outside the store. CreatedAt restarts on every
// rotation, so a refreshed token gets a full keep-alive window again.
type Token struct {
	ID           string
	AccessToken  string
	RefreshToken string
	UserID       string
	Scope        string
	CreatedAt    time.Time
}

func (t Token) ExpiresAt(keepAlive time.Duration) time.Time {
	return t.CreatedAt.Add(keepAlive)
}

// Principal is the identity a validated access token resolves to.
type Principal struct {
	UserID string
	Scope  string
}

package http

import (
	"context"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
)

type contextKey string

const principalKey contextKey = "auth_principal"

func withPrincipal(ctx context.Context, p authdomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the identity bound by RequireAuth. Handlers
// behind the middleware can rely on ok being true.
func PrincipalFromContext(ctx context.Context) (authdomain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(authdomain.Principal)
	return p, ok
}

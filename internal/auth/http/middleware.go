package http

import (
	"errors"
	"net/http"

	"github.com/myhoard/backend/internal/auth/service"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
	commonhttp "github.com/myhoard/backend/internal/common/http"
	"github.com/myhoard/backend/internal/common/logger"
)

// RequireAuth is the request-boundary classifier: no token is 401, a token
// that does not resolve is 403, a resolving token binds the principal into
// the request context. The Authorization header carries the bare access
// token value, no scheme prefix.
func RequireAuth(tokens *service.TokenService, log *logger.Logger) func(next http.Handler) http.Handler {
	errorHandler := commonhttp.NewErrorHandler(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				errorHandler.HandleError(w, r, commonerrors.ErrMissingAuthorization)
				return
			}

			principal, err := tokens.Validate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, service.ErrAuthFailed) {
					log.WithFields(r.Context(), logger.Fields{
						"path":      r.URL.Path,
						"client_ip": commonhttp.GetClientIP(r),
						"action":    "bearer_rejected",
					}).Warn("access token not found")
					errorHandler.HandleError(w, r, commonerrors.ErrAccessTokenInvalid)
					return
				}
				errorHandler.HandleError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

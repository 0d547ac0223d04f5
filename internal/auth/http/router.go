package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
	"github.com/myhoard/backend/internal/auth/service"
	commonerrors "github.com/myhoard/backend/internal/common/errors"
	commonhttp "github.com/myhoard/backend/internal/common/http"
	"github.com/myhoard/backend/internal/common/logger"
	userdomain "github.com/myhoard/backend/internal/user/domain"
)

const (
	grantTypePassword = "password"
	grantTypeRefresh  = "refresh_token"
)

type oauthRequest struct {
	GrantType    string `json:"grant_type"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Handler struct {
	tokens   *service.TokenService
	validate *validator.Validate
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
}

func NewHandler(tokens *service.TokenService, log *logger.Logger) *Handler {
	return &Handler{
		tokens:   tokens,
		validate: validator.New(),
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/oauth", commonhttp.RequireMethod(http.MethodPost)(h.oauth))
	mux.HandleFunc("/api/users", commonhttp.RequireMethod(http.MethodPost)(h.registerUser))
}

func (h *Handler) oauth(w http.ResponseWriter, r *http.Request) {
	var req oauthRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("oauth failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"grant_type": req.GrantType,
		"client_ip":  commonhttp.GetClientIP(r),
		"action":     "oauth_grant",
	}).Debug("oauth grant request")

	switch req.GrantType {
	case grantTypePassword:
		h.passwordGrant(w, r, req)
	case grantTypeRefresh:
		h.refreshGrant(w, r, req)
	case "":
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(map[string]any{
			"grant_type": "Field is required",
		}))
	default:
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(map[string]any{
			"grant_type": "Unsupported grant_type",
		}))
	}
}

func (h *Handler) passwordGrant(w http.ResponseWriter, r *http.Request, req oauthRequest) {
	// Whichever credential field the client sent fixes the lookup kind;
	// username wins when both are present.
	kind := userdomain.CredentialUsername
	credential := req.Username
	if credential == "" {
		kind = userdomain.CredentialEmail
		credential = req.Email
	}

	if credential == "" {
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(map[string]any{
			"username": "Field is required",
		}))
		return
	}
	if req.Password == "" {
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(map[string]any{
			"password": "Field is required",
		}))
		return
	}

	token, err := h.tokens.Issue(r.Context(), kind, credential, req.Password)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.writeToken(w, token)
}

// refreshGrant requires a still-valid bearer token on the request in
// addition to the refresh token being exchanged.
func (h *Handler) refreshGrant(w http.ResponseWriter, r *http.Request, req oauthRequest) {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		h.errors.HandleError(w, r, commonerrors.ErrMissingAuthorization)
		return
	}
	if _, err := h.tokens.Validate(r.Context(), raw); err != nil {
		if errors.Is(err, service.ErrAuthFailed) {
			h.errors.HandleError(w, r, commonerrors.ErrAccessTokenInvalid)
			return
		}
		h.errors.HandleError(w, r, err)
		return
	}

	if req.RefreshToken == "" {
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(map[string]any{
			"refresh_token": "Field is required",
		}))
		return
	}

	token, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	h.writeToken(w, token)
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.Warnf("register failed: invalid json: %v", err)
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON, "invalid json", nil, "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.errors.HandleError(w, r, commonerrors.ErrValidationFailed.WithDetails(validationDetails(err)))
		return
	}

	user, err := h.tokens.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, userResponse{
		Username: user.Username,
		Email:    user.Email,
	})
}

func (h *Handler) writeToken(w http.ResponseWriter, token authdomain.Token) {
	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        token.Scope,
		ExpiresIn:    h.tokens.TTLSeconds(),
	})
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			details[fieldErr.Field()] = fieldErr.Tag()
		}
	}
	return details
}

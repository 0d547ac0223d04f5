package service

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/myhoard/backend/internal/auth/domain"
	authrepo "github.com/myhoard/backend/internal/auth/repository"
	"github.com/myhoard/backend/internal/common/clock"
	"github.com/myhoard/backend/internal/common/constants"
	commoncrypto "github.com/myhoard/backend/internal/common/crypto"
	"github.com/myhoard/backend/internal/common/logger"
	userdomain "github.com/myhoard/backend/internal/user/domain"
	userrepo "github.com/myhoard/backend/internal/user/repository"
)

// Generator mints record ids and opaque token values.
type Generator interface {
	commoncrypto.IDGenerator
	commoncrypto.TokenGenerator
}

type TokenService struct {
	users     userrepo.Repository
	store     authrepo.TokenStore
	hasher    commoncrypto.PasswordHasher
	generator Generator
	clock     clock.Clock
	keepAlive time.Duration
	log       *logger.Logger
}

func NewTokenService(
	users userrepo.Repository,
	store authrepo.TokenStore,
	hasher commoncrypto.PasswordHasher,
	generator Generator,
	clk clock.Clock,
	keepAlive time.Duration,
	log *logger.Logger,
) *TokenService {
	return &TokenService{
		users:     users,
		store:     store,
		hasher:    hasher,
		generator: generator,
		clock:     clk,
		keepAlive: keepAlive,
		log:       log,
	}
}

// TTLSeconds is the expires_in value clients see; it always reflects a full
// keep-alive window because issuance and rotation both reset CreatedAt.
func (s *TokenService) TTLSeconds() int {
	return int(s.keepAlive / time.Second)
}

// Issue authenticates a password credential and mints a fresh token pair.
// An unknown user and a wrong password produce the same ErrAuthFailed, so
// the response never confirms whether an account exists.
func (s *TokenService) Issue(ctx context.Context, kind userdomain.CredentialKind, credential, password string) (authdomain.Token, error) {
	s.log.WithFields(ctx, logger.Fields{
		"credential_kind": kind.String(),
		"action":          "token_issue_attempt",
	}).Info("token issue attempt")

	user, err := s.users.FindByCredential(ctx, kind, credential)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"credential_kind": kind.String(),
				"action":          "token_issue_user_not_found",
			}).Warn("token issue failed: user not found")
			incrementAuthFailures("issue")
			return authdomain.Token{}, ErrAuthFailed
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "token_issue_user_lookup_failed",
		}).Errorf("token issue failed: user lookup error: %v", err)
		return authdomain.Token{}, ErrStoreUnavailable.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "token_issue_invalid_password",
		}).Warn("token issue failed: invalid password")
		incrementAuthFailures("issue")
		return authdomain.Token{}, ErrAuthFailed
	}

	id, err := s.generator.NewID()
	if err != nil {
		return authdomain.Token{}, ErrInternal.WithCause(err)
	}

	token := authdomain.Token{
		ID:        id,
		UserID:    string(user.ID),
		Scope:     constants.DefaultTokenScope,
		CreatedAt: s.clock.Now(),
	}

	if err := s.mintAndInsert(ctx, &token); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "token_issue_insert_failed",
		}).Errorf("token issue failed: %v", err)
		return authdomain.Token{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "token_issue_success",
	}).Info("token issue success")

	incrementTokensIssued()

	return token, nil
}

// Refresh exchanges a live refresh token for a rotated pair. The old access
// and refresh values are dead the moment the update lands; a second refresh
// with the same value fails like any unknown token.
func (s *TokenService) Refresh(ctx context.Context, refreshValue string) (authdomain.Token, error) {
	s.log.WithFields(ctx, logger.Fields{
		"action": "token_refresh_attempt",
	}).Info("token refresh attempt")

	if !commoncrypto.IsIdentifierShaped(refreshValue) {
		incrementAuthFailures("refresh")
		return authdomain.Token{}, ErrAuthFailed
	}

	token, err := s.store.FindByRefreshToken(ctx, refreshValue)
	if err != nil {
		if errors.Is(err, authrepo.ErrTokenNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"action": "token_refresh_not_found",
			}).Warn("token refresh failed: not found")
			incrementAuthFailures("refresh")
			return authdomain.Token{}, ErrAuthFailed
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "token_refresh_lookup_failed",
		}).Errorf("token refresh lookup failed: %v", err)
		return authdomain.Token{}, ErrStoreUnavailable.WithCause(err)
	}

	accessToken, err := s.generator.NewToken()
	if err != nil {
		return authdomain.Token{}, ErrInternal.WithCause(err)
	}
	refreshToken, err := s.generator.NewToken()
	if err != nil {
		return authdomain.Token{}, ErrInternal.WithCause(err)
	}

	token.AccessToken = accessToken
	token.RefreshToken = refreshToken
	token.CreatedAt = s.clock.Now()

	if err := s.store.Update(ctx, token); err != nil {
		if errors.Is(err, authrepo.ErrTokenNotFound) {
			// Raced with expiry; indistinguishable from a dead token.
			incrementAuthFailures("refresh")
			return authdomain.Token{}, ErrAuthFailed
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": token.UserID,
			"action":  "token_refresh_update_failed",
		}).Errorf("token refresh failed: %v", err)
		return authdomain.Token{}, ErrStoreUnavailable.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": token.UserID,
		"action":  "token_refresh_success",
	}).Info("token refresh success")

	incrementTokensRefreshed()

	return token, nil
}

// Validate resolves a bearer value to the principal it belongs to. Malformed
// values, unknown values and expired records are all the same failure.
func (s *TokenService) Validate(ctx context.Context, accessValue string) (authdomain.Principal, error) {
	incrementTokenValidations()

	if !commoncrypto.IsIdentifierShaped(accessValue) {
		incrementTokenValidationsFailed()
		return authdomain.Principal{}, ErrAuthFailed
	}

	token, err := s.store.FindByAccessToken(ctx, accessValue)
	if err != nil {
		if errors.Is(err, authrepo.ErrTokenNotFound) {
			incrementTokenValidationsFailed()
			return authdomain.Principal{}, ErrAuthFailed
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "token_validate_lookup_failed",
		}).Errorf("token validate lookup failed: %v", err)
		return authdomain.Principal{}, ErrStoreUnavailable.WithCause(err)
	}

	return authdomain.Principal{
		UserID: token.UserID,
		Scope:  token.Scope,
	}, nil
}

// mintAndInsert generates the token pair and persists it, regenerating both
// values once if the store reports an identifier collision.
func (s *TokenService) mintAndInsert(ctx context.Context, token *authdomain.Token) error {
	for attempt := 0; attempt < 2; attempt++ {
		accessToken, err := s.generator.NewToken()
		if err != nil {
			return ErrInternal.WithCause(err)
		}
		refreshToken, err := s.generator.NewToken()
		if err != nil {
			return ErrInternal.WithCause(err)
		}

		token.AccessToken = accessToken
		token.RefreshToken = refreshToken

		err = s.store.Insert(ctx, *token)
		if err == nil {
			return nil
		}
		if errors.Is(err, authrepo.ErrDuplicateToken) {
			incrementTokenInsertRetries()
			continue
		}
		return ErrStoreUnavailable.WithCause(err)
	}

	return ErrStoreUnavailable.WithCause(authrepo.ErrDuplicateToken)
}

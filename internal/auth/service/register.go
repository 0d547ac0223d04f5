package service

import (
	"context"
	"errors"

	commonerrors "github.com/myhoard/backend/internal/common/errors"
	"github.com/myhoard/backend/internal/common/logger"
	userdomain "github.com/myhoard/backend/internal/user/domain"
	userrepo "github.com/myhoard/backend/internal/user/repository"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *TokenService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, ErrInternal.WithCause(err)
	}

	id, err := s.generator.NewID()
	if err != nil {
		return userdomain.User{}, ErrInternal.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUserAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_already_exists",
			}).Warn("register failed: already exists")
			return userdomain.User{}, commonerrors.ErrUserAlreadyExists
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		return userdomain.User{}, ErrStoreUnavailable.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return user, nil
}

package service

import (
	commonerrors "github.com/myhoard/backend/internal/common/errors"
)

var (
	// ErrAuthFailed covers unknown users, wrong passwords and dead or
	// malformed tokens alike.
	ErrAuthFailed = commonerrors.ErrAuthFailed

	// ErrStoreUnavailable marks infrastructure failures; these must never be
	// reported to the client as an authentication failure.
	ErrStoreUnavailable = commonerrors.ErrStoreUnavailable

	ErrInternal = commonerrors.ErrInternalError
)

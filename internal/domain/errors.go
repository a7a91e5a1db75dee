package domain

import "errors"

var (
	ErrMissingToken          = errors.New("missing access token")
	ErrTokenMalformed        = errors.New("access token malformed")
	ErrTokenSignatureInvalid = errors.New("access token signature invalid")
	ErrTokenExpired          = errors.New("access token expired")
	ErrSessionExpired        = errors.New("session expired")
	ErrSessionSuperseded     = errors.New("session superseded by a later login")
	ErrUnknownAccount        = errors.New("unknown account")
	ErrLockedAccount         = errors.New("account locked")
	ErrAccountDisabled       = errors.New("account disabled")
	ErrIncorrectCredential   = errors.New("incorrect credential")
	ErrUnknownDevice         = errors.New("unknown device binding")
	ErrForbidden             = errors.New("forbidden")
	ErrNotFound              = errors.New("not found")
)

package auth

import "errors"

var (
	// ErrTokenMissing indicates no refresh token was presented.
	ErrTokenMissing = errors.New("refresh token missing")
	// ErrTokenInvalid indicates the presented token failed signature or claim checks.
	ErrTokenInvalid = errors.New("refresh token invalid")
	// ErrTokenExpired indicates the presented token is past its expiry.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrTokenMismatch indicates the presented token is validly signed but no
	// longer matches the stored slot, i.e. it has been superseded by a rotation.
	ErrTokenMismatch = errors.New("refresh token superseded")
	// ErrTokenGeneration indicates token issuance or persistence failed. The
	// error is deliberately opaque about which step broke.
	ErrTokenGeneration = errors.New("token generation failed")
)

package auth

import "errors"

var (
	ErrMissingTokens          = errors.New("login response carries no token pair")
	ErrPasswordsDontMatch     = errors.New("passwords do not match")
	ErrEmptyProfileUpdate     = errors.New("profile update has no field set")
	ErrMissingAvatar          = errors.New("avatar content is required")
	ErrInvalidCredentialsForm = errors.New("email and password are required")
)

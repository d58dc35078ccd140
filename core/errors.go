package core

import "errors"

// Identity and session errors
var (
	ErrUnauthorized     = errors.New("bearer token is not valid") // 401
	ErrSessionNotFound  = errors.New("no session stored")
	ErrUserNotFound     = errors.New("user not found") // 404
	ErrMalformedProfile = errors.New("profile payload is not valid JSON")
	ErrCacheNotFound    = errors.New("profile not found in cache")
)

// Validation errors (client input)
var (
	ErrPasswordRequired  = errors.New("password is required")   // 400
	ErrPasswordTooShort  = errors.New("password is too short")  // 400
	ErrPasswordTooLong   = errors.New("password is too long")   // 400
	ErrDiscordIDRequired = errors.New("discord id is required") // 400
	ErrUserIDRequired    = errors.New("user id is required")    // 400
)

// Authorization errors
var (
	ErrAdminRequired = errors.New("administrator privileges required") // 403
)

// Config errors (server-side configuration)
var (
	ErrStorageRequired     = errors.New("storage adapter is required") // 500
	ErrHTTPAdapterRequired = errors.New("http adapter is required")    // 500
)

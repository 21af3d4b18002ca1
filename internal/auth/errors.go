package auth

import "errors"

// ErrInvalidToken covers missing, malformed, expired and wrongly signed
// tokens; callers must not be able to tell these apart.
var ErrInvalidToken = errors.New("auth: invalid token")

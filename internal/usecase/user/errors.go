// Package user implements the public profile endpoints and the signed-in
// user's self-service operations.
package user

import "errors"

var (
	// ErrNoSession is returned by the /me operations for anonymous callers.
	ErrNoSession = errors.New("no session")
)

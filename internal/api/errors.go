package api

import "errors"

// Sentinel errors for the authentication lifecycle. Callers match these
// with errors.Is; messages carry the server detail where available.
var (
	// ErrAuthenticationFailed indicates the login endpoint rejected the
	// credentials for a non-challenge reason.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrChallengeRequired indicates the server requires a two-factor
	// code before the session can become authenticated. Supply it via
	// Session.SubmitChallenge.
	ErrChallengeRequired = errors.New("two-factor challenge required")

	// ErrRefreshFailed indicates the refresh-token exchange was rejected.
	// The caller must fall back to a full login.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrTransport indicates a network-level failure, as opposed to an
	// HTTP error status returned by the remote API.
	ErrTransport = errors.New("transport error")
)

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/rhshell/rh/internal/creds"
)

const (
	// OAuthClientID is the fixed client id the official apps present to
	// the token endpoint.
	OAuthClientID = "c82SH0WZOsabOXGP2sxqcj34FxkvfnWRZBKlBjFS"

	// tokenExpirySeconds is the access-token lifetime requested at login.
	tokenExpirySeconds = 86400
)

// API paths used by the session lifecycle.
const (
	pathLogin  = "/oauth2/token/"
	pathLogout = "/api-token-logout/"
	pathUser   = "/user/"
)

// State is the authentication state of a Session.
type State int

const (
	// Unauthenticated means no valid access token is held.
	Unauthenticated State = iota
	// ChallengePending means login stalled on a two-factor challenge and
	// is waiting for SubmitChallenge.
	ChallengePending
	// Authenticated means requests carry a bearer credential the server
	// has accepted.
	Authenticated
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case ChallengePending:
		return "challenge_pending"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session owns the authentication lifecycle on top of a Client. It is
// the only writer of the credential token fields.
type Session struct {
	client *Client
	creds  *creds.Credentials
	state  State
}

// NewSession creates a session over the given client and credentials.
// If the credentials already carry an access token it is installed on
// the client, but the session stays Unauthenticated until Restore or
// Login proves the token is good.
func NewSession(client *Client, cr *creds.Credentials) *Session {
	if cr.AccessToken != "" {
		client.SetToken(cr.AccessToken)
	}
	return &Session{client: client, creds: cr}
}

// Client returns the underlying HTTP client. All authenticated requests
// go through it.
func (s *Session) Client() *Client {
	return s.client
}

// State returns the current authentication state.
func (s *Session) State() State {
	return s.state
}

// Credentials returns the credential state owned by this session.
func (s *Session) Credentials() *creds.Credentials {
	return s.creds
}

// tokenResponse is the token endpoint payload for both the password and
// refresh-token grants.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	MFARequired  bool   `json:"mfa_required"`
	MFAType      string `json:"mfa_type"`
	Detail       string `json:"detail"`
}

// Login posts the password grant to the login endpoint.
//
// Returns ErrChallengeRequired when the server demands a two-factor
// code; the session then waits in ChallengePending for SubmitChallenge.
// Returns ErrAuthenticationFailed when the server rejects the
// credentials for any other reason.
func (s *Session) Login(ctx context.Context) error {
	return s.login(ctx, "")
}

// SubmitChallenge completes a login that stalled on a two-factor
// challenge by re-posting the credentials with the one-time code.
func (s *Session) SubmitChallenge(ctx context.Context, code string) error {
	if s.state != ChallengePending {
		return fmt.Errorf("%w: no challenge pending", ErrAuthenticationFailed)
	}
	return s.login(ctx, code)
}

func (s *Session) login(ctx context.Context, mfaCode string) error {
	form := url.Values{
		"username":     {s.creds.Username},
		"password":     {s.creds.Password},
		"grant_type":   {"password"},
		"scope":        {"internal"},
		"client_id":    {OAuthClientID},
		"expires_in":   {strconv.Itoa(tokenExpirySeconds)},
		"device_token": {s.creds.DeviceToken},
	}
	if mfaCode != "" {
		form.Set("mfa_code", mfaCode)
	}

	resp, err := s.client.PostForm(ctx, pathLogin, form)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var tok tokenResponse
	body, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(body, &tok)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.state = Unauthenticated
		if tok.Detail != "" {
			return fmt.Errorf("%w: %d - %s", ErrAuthenticationFailed, resp.StatusCode, tok.Detail)
		}
		return fmt.Errorf("%w: %d", ErrAuthenticationFailed, resp.StatusCode)
	}

	if tok.MFARequired {
		s.state = ChallengePending
		if tok.MFAType != "" {
			return fmt.Errorf("%w (%s)", ErrChallengeRequired, tok.MFAType)
		}
		return ErrChallengeRequired
	}

	if tok.AccessToken == "" {
		s.state = Unauthenticated
		return fmt.Errorf("%w: empty access token in response", ErrAuthenticationFailed)
	}

	s.install(tok)
	return nil
}

// Refresh exchanges the refresh token for a new access token without
// re-prompting credentials. Any non-2xx response fails with
// ErrRefreshFailed; the caller must then fall back to a full Login.
func (s *Session) Refresh(ctx context.Context) error {
	if s.creds.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token", ErrRefreshFailed)
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {s.creds.RefreshToken},
		"scope":         {"internal"},
		"client_id":     {OAuthClientID},
		"device_token":  {s.creds.DeviceToken},
	}

	resp, err := s.client.PostForm(ctx, pathLogin, form)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", ErrRefreshFailed, resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: empty access token in response", ErrRefreshFailed)
	}

	s.install(tok)
	return nil
}

// Restore reuses a persisted access token: it probes the user profile
// endpoint, falls back to Refresh on an authorization error, and fails
// with ErrAuthenticationFailed when both paths are exhausted so the
// caller can fall back to an interactive Login.
//
// Only a 401/403 probe response means the saved token is bad. Any other
// failure status is a server-side problem: it is reported as-is and the
// local tokens stay untouched, because discarding good credentials over
// an outage would force a needless interactive re-login.
func (s *Session) Restore(ctx context.Context) error {
	if s.creds.AccessToken != "" {
		resp, err := s.client.Get(ctx, pathUser)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			s.state = Authenticated
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Token rejected, try the refresh grant below.
		default:
			return fmt.Errorf("session probe returned %d", resp.StatusCode)
		}
	}

	if err := s.Refresh(ctx); err != nil {
		if errors.Is(err, ErrTransport) {
			return err
		}
		s.state = Unauthenticated
		s.client.ClearToken()
		return fmt.Errorf("%w: saved session could not be restored", ErrAuthenticationFailed)
	}
	return nil
}

// Logout posts to the logout endpoint best-effort and always clears the
// local tokens: a remote failure is downgraded to a warning because the
// local session must never stay half logged in.
func (s *Session) Logout(ctx context.Context) {
	resp, err := s.client.PostForm(ctx, pathLogout, url.Values{})
	if err != nil {
		log.Warn().Err(err).Msg("logout request failed, clearing local session anyway")
	} else {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Warn().Int("status", resp.StatusCode).Msg("logout rejected by server, clearing local session anyway")
		}
		_ = resp.Body.Close()
	}

	s.creds.AccessToken = ""
	s.creds.RefreshToken = ""
	s.client.ClearToken()
	s.state = Unauthenticated
}

// install records freshly issued tokens on the credentials and client.
func (s *Session) install(tok tokenResponse) {
	s.creds.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		s.creds.RefreshToken = tok.RefreshToken
	}
	s.client.SetToken(tok.AccessToken)
	s.state = Authenticated
}

package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// LoginPath is the canonical public entry path. Provider errors and
// unrecoverable callbacks land here with an error code in the query.
const LoginPath = "/login"

// ParseErrorCode marks a callback whose user payload failed to decode.
const ParseErrorCode = "invalid_callback"

// CallbackKind tags the variant parsed from a callback URL.
type CallbackKind int

const (
	// NoCallback means no relevant parameters were present.
	NoCallback CallbackKind = iota
	// TokenCallback is a successful provider redirect carrying token+user.
	TokenCallback
	// ErrorCallback is a provider-reported failure.
	ErrorCallback
)

// CallbackResult is the tagged variant produced by parsing the query
// string of a page load. The user payload stays raw here; it is decoded
// during processing so a decode failure can degrade cleanly.
type CallbackResult struct {
	Kind    CallbackKind
	Token   string
	RawUser string
	Code    string
}

// ParseCallback inspects query parameters for an embedded authentication
// result. An error parameter wins over token/user; the two are mutually
// exclusive in the provider contract.
func ParseCallback(query url.Values) CallbackResult {
	if code := query.Get("error"); code != "" {
		return CallbackResult{Kind: ErrorCallback, Code: code}
	}
	token := query.Get("token")
	rawUser := query.Get("user")
	if token != "" && rawUser != "" {
		return CallbackResult{Kind: TokenCallback, Token: token, RawUser: rawUser}
	}
	return CallbackResult{}
}

// CallbackDisposition records how a callback resolved, for logs and metrics.
type CallbackDisposition string

const (
	CallbackNone          CallbackDisposition = "none"
	CallbackCommitted     CallbackDisposition = "committed"
	CallbackRedundant     CallbackDisposition = "redundant"
	CallbackProviderError CallbackDisposition = "provider_error"
	CallbackParseError    CallbackDisposition = "parse_error"
)

// CallbackOutcome is what a resolved callback leaves behind: an optional
// URL rewrite and whether the session was written.
type CallbackOutcome struct {
	Disposition    CallbackDisposition
	Redirect       string // non-empty: the URL must be rewritten before rendering
	SessionWritten bool
}

// IdentityRegistrar records a provider-asserted identity so the next
// identity fetch returns it fresh. Implementations must invalidate any
// cached profile for the token synchronously, before returning.
type IdentityRegistrar interface {
	Register(ctx context.Context, token string, user *Profile) error
}

// CallbackProcessor resolves the authentication callback embedded in a
// navigation URL exactly once. The resolved flag starts false and flips
// on the first resolution regardless of outcome; a second Process call
// returns the recorded outcome without side effects.
//
// Side effects are strictly: session-store writes, the URL rewrite
// carried in the outcome, and identity registration (which invalidates
// the cached profile). No network call is made here.
type CallbackProcessor struct {
	store     SessionStorage
	registrar IdentityRegistrar

	resolved bool
	outcome  *CallbackOutcome
}

// NewCallbackProcessor builds a processor for one navigation.
func NewCallbackProcessor(store SessionStorage, registrar IdentityRegistrar) *CallbackProcessor {
	return &CallbackProcessor{store: store, registrar: registrar}
}

// Resolved reports whether the one-shot has fired.
func (p *CallbackProcessor) Resolved() bool {
	return p.resolved
}

// Process resolves the callback in the URL, if any.
//
// A storage failure is returned without flipping the resolved flag so
// the navigation can be retried; everything else - provider error,
// malformed payload, redundant callback, no callback - is a resolution.
func (p *CallbackProcessor) Process(ctx context.Context, clientID string, u *url.URL) (*CallbackOutcome, error) {
	if p.resolved {
		return p.outcome, nil
	}

	result := ParseCallback(u.Query())
	outcome := &CallbackOutcome{Disposition: CallbackNone}

	switch result.Kind {
	case ErrorCallback:
		// Session untouched; the login surface shows the code.
		outcome.Disposition = CallbackProviderError
		outcome.Redirect = loginRedirect(result.Code)

	case TokenCallback:
		session, err := p.store.GetSession(ctx, clientID)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}

		if session.TokenPresent() {
			// The callback is redundant: keep the existing session and
			// only strip the parameters so a refresh cannot reprocess.
			outcome.Disposition = CallbackRedundant
			outcome.Redirect = strippedPath(u)
			break
		}

		user, err := DecodeProfile(result.RawUser)
		if err != nil {
			// Recoverable: degrades to "no callback processed", never to
			// a corrupted session.
			outcome.Disposition = CallbackParseError
			outcome.Redirect = loginRedirect(ParseErrorCode)
			break
		}

		if err := p.store.SetSession(ctx, clientID, result.Token, user); err != nil {
			return nil, fmt.Errorf("failed to write session: %w", err)
		}
		// Register synchronously so the cached profile is invalidated
		// before control yields and the identity fetch reruns.
		if err := p.registrar.Register(ctx, result.Token, user); err != nil {
			return nil, fmt.Errorf("failed to register identity: %w", err)
		}

		outcome.Disposition = CallbackCommitted
		outcome.SessionWritten = true
		outcome.Redirect = strippedPath(u)
	}

	p.resolved = true
	p.outcome = outcome
	return outcome, nil
}

func loginRedirect(code string) string {
	return LoginPath + "?error=" + url.QueryEscape(code)
}

// strippedPath is the callback URL with every query parameter removed.
func strippedPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

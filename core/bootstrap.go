package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

// MetricsRecorder receives bootstrap observability events. Implemented
// by pkg/metrics; a nil recorder disables recording.
type MetricsRecorder interface {
	SurfaceResolved(surface string)
	CallbackResolved(disposition string)
	SessionCleared()
}

type noopMetrics struct{}

func (noopMetrics) SurfaceResolved(string)  {}
func (noopMetrics) CallbackResolved(string) {}
func (noopMetrics) SessionCleared()         {}

// Decision is the resolved view for one navigation: the Surface, its
// route table, the profile snapshot it was derived from, and an optional
// URL rewrite that must happen before rendering.
type Decision struct {
	Surface        Surface   `json:"surface"`
	Plan           RoutePlan `json:"plan"`
	Profile        *Profile  `json:"profile,omitempty"`
	Redirect       string    `json:"redirect,omitempty"`
	SessionCleared bool      `json:"sessionCleared,omitempty"`
}

// Bootstrapper reconciles the three racing identity sources - the stored
// session, a callback embedded in the URL, and the identity fetch -
// exactly once per navigation, in that order. The callback resolves
// first and exclusively because a successful callback can create the
// very session the identity fetch depends on.
type Bootstrapper struct {
	store     SessionStorage
	identity  IdentityProvider
	registrar IdentityRegistrar
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewBootstrapper builds a bootstrapper. Metrics and logger may be nil.
func NewBootstrapper(store SessionStorage, identity IdentityProvider, registrar IdentityRegistrar, metrics MetricsRecorder, logger *slog.Logger) *Bootstrapper {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bootstrapper{
		store:     store,
		identity:  identity,
		registrar: registrar,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve runs the session bootstrap for one navigation and returns the
// Decision. No in-flight state survives between calls; the Surface is
// re-derived from scratch every time.
func (b *Bootstrapper) Resolve(ctx context.Context, clientID string, reqURL *url.URL) (*Decision, error) {
	processor := NewCallbackProcessor(b.store, b.registrar)
	outcome, err := processor.Process(ctx, clientID, reqURL)
	if err != nil {
		return nil, err
	}
	b.metrics.CallbackResolved(string(outcome.Disposition))
	if outcome.Disposition == CallbackProviderError || outcome.Disposition == CallbackParseError {
		b.logger.WarnContext(ctx, "callback rejected",
			"disposition", string(outcome.Disposition),
			"client_id", clientID,
		)
	}

	session, err := b.store.GetSession(ctx, clientID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}
		session = &Session{}
	}

	snapshot := Snapshot{TokenPresent: session.TokenPresent()}
	if snapshot.TokenPresent {
		profile, err := b.identity.CurrentProfile(ctx, session.Token)
		switch {
		case errors.Is(err, ErrUnauthorized):
			// The backend rejected the stored token. Clear the session
			// whole and restart from the login surface: nothing derived
			// from the stale session may survive.
			if clearErr := b.store.ClearSession(ctx, clientID); clearErr != nil {
				return nil, fmt.Errorf("failed to clear session: %w", clearErr)
			}
			b.metrics.SessionCleared()
			b.logger.InfoContext(ctx, "session cleared", "client_id", clientID)

			decision := &Decision{
				Surface:        SurfacePublicAuth,
				Plan:           PlanFor(SurfacePublicAuth),
				Redirect:       LoginPath,
				SessionCleared: true,
			}
			b.metrics.SurfaceResolved(decision.Surface.String())
			return decision, nil
		case err != nil:
			return nil, err
		}
		snapshot.User = profile
	}

	surface := snapshot.Surface()
	decision := &Decision{
		Surface: surface,
		Plan:    PlanFor(surface),
		Profile: snapshot.User,
	}

	// A callback rewrite wins over the canonical collapse; the rewritten
	// URL triggers a fresh navigation which is gated again.
	if outcome.Redirect != "" {
		decision.Redirect = outcome.Redirect
	} else if !decision.Plan.Allows(reqURL.Path) {
		decision.Redirect = decision.Plan.Canonical
	}

	b.metrics.SurfaceResolved(surface.String())
	return decision, nil
}

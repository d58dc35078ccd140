package core

// Surface is the single application view selected for the current
// session state. Exactly one Surface holds at any render; it is
// re-derived from scratch whenever the profile snapshot changes.
type Surface int

const (
	// SurfaceNone is the transient pre-state while the identity fetch is
	// still in flight. It is not routable and never rendered.
	SurfaceNone Surface = iota
	SurfacePublicAuth
	SurfacePendingApproval
	SurfaceOnboardingPassword
	SurfaceOnboardingDiscord
	SurfaceOnboardingTerms
	SurfaceDashboard
)

func (s Surface) String() string {
	switch s {
	case SurfacePublicAuth:
		return "public_auth"
	case SurfacePendingApproval:
		return "pending_approval"
	case SurfaceOnboardingPassword:
		return "onboarding_password"
	case SurfaceOnboardingDiscord:
		return "onboarding_discord"
	case SurfaceOnboardingTerms:
		return "onboarding_terms"
	case SurfaceDashboard:
		return "dashboard"
	default:
		return "none"
	}
}

// Snapshot is the input to the gate: token presence, the last fetched
// profile, and whether the identity fetch is still loading.
type Snapshot struct {
	Loading      bool
	TokenPresent bool
	User         *Profile
}

// Surface maps the snapshot to exactly one Surface. The first matching
// rule wins, and the ordering is the contract: whitelisting is an
// administrator-granted gate that blocks every onboarding step, the
// password step precedes Discord linking because later steps assume
// password auth is a viable fallback, and terms acceptance comes last
// because the terms gate overlays the dashboard instead of replacing it.
//
// The function is pure: re-running it on an unchanged snapshot always
// yields the same Surface.
func (s Snapshot) Surface() Surface {
	switch {
	case s.Loading:
		return SurfaceNone
	case !s.TokenPresent || s.User == nil:
		return SurfacePublicAuth
	case !s.User.Whitelisted():
		return SurfacePendingApproval
	case !s.User.PasswordSet():
		return SurfaceOnboardingPassword
	case !s.User.DiscordLinked():
		return SurfaceOnboardingDiscord
	case !s.User.AcceptedTerms():
		return SurfaceOnboardingTerms
	default:
		return SurfaceDashboard
	}
}

package core

import "strings"

// RoutePlan is the fixed route table owned by a Surface. Navigation to
// any path outside the table collapses to the canonical entry path.
type RoutePlan struct {
	Surface   Surface
	Canonical string
	Paths     []string

	// TermsGate marks the dashboard plan that renders behind a blocking
	// terms modal. The routes are identical to the dashboard plan; only
	// the overlay differs.
	TermsGate bool
}

// The dashboard table is shared by SurfaceOnboardingTerms and
// SurfaceDashboard. Users may browse with the terms modal outstanding
// as long as every blocking step before it has passed.
var dashboardPaths = []string{
	"/",
	"/deals",
	"/documents",
	"/appointments",
	"/checkout",
	"/admin",
}

// PlanFor returns the route table for a Surface.
func PlanFor(s Surface) RoutePlan {
	switch s {
	case SurfacePublicAuth:
		return RoutePlan{
			Surface:   s,
			Canonical: "/login",
			Paths:     []string{"/login", "/register"},
		}
	case SurfacePendingApproval:
		return RoutePlan{
			Surface:   s,
			Canonical: "/pending",
			Paths:     []string{"/pending"},
		}
	case SurfaceOnboardingPassword:
		return RoutePlan{
			Surface:   s,
			Canonical: "/onboarding/password",
			Paths:     []string{"/onboarding/password"},
		}
	case SurfaceOnboardingDiscord:
		return RoutePlan{
			Surface:   s,
			Canonical: "/onboarding/discord",
			Paths:     []string{"/onboarding/discord"},
		}
	case SurfaceOnboardingTerms:
		return RoutePlan{
			Surface:   s,
			Canonical: "/",
			Paths:     dashboardPaths,
			TermsGate: true,
		}
	case SurfaceDashboard:
		return RoutePlan{
			Surface:   s,
			Canonical: "/",
			Paths:     dashboardPaths,
		}
	default:
		// SurfaceNone owns no routes; nothing is reachable before the
		// gate has decided.
		return RoutePlan{Surface: SurfaceNone}
	}
}

// Allows reports whether the path is inside the plan's table. Each entry
// covers itself and its subtree, except "/" which only matches exactly.
func (p RoutePlan) Allows(path string) bool {
	for _, entry := range p.Paths {
		if path == entry {
			return true
		}
		if entry != "/" && strings.HasPrefix(path, entry+"/") {
			return true
		}
	}
	return false
}

// Package fiber mounts the portal on a gofiber/v3 application: the
// per-navigation gate middleware plus the JSON API for the session
// decision and the onboarding steps.
package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/opendeck/portal"
)

type Adapter struct {
	app    *fiber.App
	portal *portal.Portal
}

var _ portal.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

func (a *Adapter) RegisterRoutes(p *portal.Portal) error {
	a.portal = p

	api := a.app.Group(p.BasePath)

	// Public: reports the bootstrap decision for the current client.
	api.Get("/session", a.session)

	// Protected: the state-changing onboarding collaborators.
	api.Post("/onboarding/password", a.requireIdentity, a.createPassword)
	api.Post("/onboarding/discord", a.requireIdentity, a.linkDiscord)
	api.Post("/onboarding/terms", a.requireIdentity, a.acceptTerms)
	api.Post("/admin/whitelist", a.requireIdentity, a.setWhitelist)

	return nil
}

package fiber

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v3"

	"github.com/opendeck/portal"
	"github.com/opendeck/portal/pkg/crypto"
)

// clientCookie identifies a browser client across reloads; it carries no
// credential, only the key under which the session is stored.
const clientCookie = "portal_client"

const clientCookieMaxAge = 365 * 24 * 60 * 60 // seconds

// Gate is the per-navigation bootstrap middleware for page routes. It
// resolves the callback, the stored session, and the identity fetch into
// one Decision, then either redirects (URL rewrite or canonical-path
// collapse) or stores the decision in Locals for downstream rendering.
func (a *Adapter) Gate(c fiber.Ctx) error {
	clientID, err := a.clientID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to assign client id",
		})
	}

	reqURL, err := url.Parse(c.OriginalURL())
	if err != nil {
		return c.Redirect().To(portal.LoginPath)
	}

	decision, err := a.portal.Bootstrap.Resolve(c.Context(), clientID, reqURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "bootstrap failed",
		})
	}

	if decision.Redirect != "" && decision.Redirect != c.OriginalURL() {
		return c.Redirect().To(decision.Redirect)
	}

	c.Locals("surface", decision.Surface)
	c.Locals("plan", decision.Plan)
	if decision.Profile != nil {
		c.Locals("profile", decision.Profile)
	}

	return c.Next()
}

// requireIdentity guards the onboarding API: it resolves the caller's
// bearer token (header first, stored session second) to a profile and
// stashes it in Locals. An unauthorized token clears the stored session
// so no stale surface can survive.
func (a *Adapter) requireIdentity(c fiber.Ctx) error {
	clientID, err := a.clientID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to assign client id",
		})
	}

	token := extractToken(c)
	if token == "" {
		if session, err := a.portal.Sessions.GetSession(c.Context(), clientID); err == nil {
			token = session.Token
		}
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": portal.ErrUnauthorized.Error(),
		})
	}

	profile, err := a.portal.Identity.CurrentProfile(c.Context(), token)
	if err != nil {
		if errors.Is(err, portal.ErrUnauthorized) {
			if clearErr := a.portal.Sessions.ClearSession(c.Context(), clientID); clearErr != nil {
				a.portal.Logger.ErrorContext(c.Context(), "failed to clear session",
					"client_id", clientID,
					"error", clearErr,
				)
			}
		}
		return handleAuthError(c, err)
	}

	c.Locals("profile", profile)
	c.Locals("token", token)

	return c.Next()
}

// clientID returns the stable client cookie, minting one on first visit.
func (a *Adapter) clientID(c fiber.Ctx) (string, error) {
	if id := c.Cookies(clientCookie); id != "" {
		return id, nil
	}

	id, err := crypto.ClientID()
	if err != nil {
		return "", err
	}

	c.Cookie(&fiber.Cookie{
		Name:     clientCookie,
		Value:    id,
		MaxAge:   clientCookieMaxAge,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id, nil
}

// extractToken extracts the bearer token from the Authorization header.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}

package fiber

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v3"

	"github.com/opendeck/portal"
)

// session reports the bootstrap decision for the calling client. Page
// navigations are gated by the Gate middleware; this endpoint lets an
// API consumer ask which surface currently holds.
func (a *Adapter) session(c fiber.Ctx) error {
	clientID, err := a.clientID(c)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to assign client id",
		})
	}

	// Callbacks arrive on page navigations, not here; resolve against
	// the dashboard entry path.
	decision, err := a.portal.Bootstrap.Resolve(c.Context(), clientID, &url.URL{Path: "/"})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "bootstrap failed",
		})
	}

	return c.Status(http.StatusOK).JSON(decision)
}

type createPasswordRequest struct {
	Password string `json:"password"`
}

func (a *Adapter) createPassword(c fiber.Ctx) error {
	profile := c.Locals("profile").(*portal.Profile)

	var input createPasswordRequest
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := a.portal.Accounts.CreatePassword(c.Context(), profile.ID, input.Password); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "password created",
	})
}

type linkDiscordRequest struct {
	DiscordID string `json:"discordId"`
}

func (a *Adapter) linkDiscord(c fiber.Ctx) error {
	profile := c.Locals("profile").(*portal.Profile)

	var input linkDiscordRequest
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := a.portal.Accounts.LinkDiscord(c.Context(), profile.ID, input.DiscordID); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "discord linked",
	})
}

func (a *Adapter) acceptTerms(c fiber.Ctx) error {
	profile := c.Locals("profile").(*portal.Profile)

	if err := a.portal.Accounts.AcceptTerms(c.Context(), profile.ID); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "terms accepted",
	})
}

type whitelistRequest struct {
	UserID      string `json:"userId"`
	Whitelisted bool   `json:"whitelisted"`
}

func (a *Adapter) setWhitelist(c fiber.Ctx) error {
	profile := c.Locals("profile").(*portal.Profile)

	var input whitelistRequest
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := a.portal.Accounts.SetWhitelisted(c.Context(), profile.ID, input.UserID, input.Whitelisted); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "whitelist updated",
	})
}

// handleAuthError maps portal errors to appropriate HTTP responses
func handleAuthError(c fiber.Ctx, err error) error {
	status := mapErrorToStatus(err)
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps portal error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, portal.ErrUnauthorized):
		return http.StatusUnauthorized

	case errors.Is(err, portal.ErrAdminRequired):
		return http.StatusForbidden

	case errors.Is(err, portal.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, portal.ErrPasswordRequired),
		errors.Is(err, portal.ErrPasswordTooShort),
		errors.Is(err, portal.ErrPasswordTooLong),
		errors.Is(err, portal.ErrDiscordIDRequired),
		errors.Is(err, portal.ErrUserIDRequired),
		errors.Is(err, portal.ErrMalformedProfile):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

package fiber

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/opendeck/portal"
	"github.com/opendeck/portal/adapters/memory"
	"github.com/opendeck/portal/pkg/crypto"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, http.StatusOK},
		{"unauthorized", portal.ErrUnauthorized, http.StatusUnauthorized},
		{"admin required", portal.ErrAdminRequired, http.StatusForbidden},
		{"user not found", portal.ErrUserNotFound, http.StatusNotFound},
		{"password required", portal.ErrPasswordRequired, http.StatusBadRequest},
		{"password too short", portal.ErrPasswordTooShort, http.StatusBadRequest},
		{"password too long", portal.ErrPasswordTooLong, http.StatusBadRequest},
		{"discord id required", portal.ErrDiscordIDRequired, http.StatusBadRequest},
		{"user id required", portal.ErrUserIDRequired, http.StatusBadRequest},
		{"malformed profile", portal.ErrMalformedProfile, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", errors.Join(errors.New("ctx"), portal.ErrUnauthorized), http.StatusUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := mapErrorToStatus(test.err); got != test.want {
				t.Errorf("Expected status %d, got %d", test.want, got)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

// newTestApp wires a portal on in-memory storage with one seeded user
// holding a valid bearer token.
func newTestApp(t *testing.T) (*fiber.App, *memory.Store) {
	t.Helper()

	app := fiber.New()
	storage := memory.New()

	_, err := portal.New(portal.Config{
		Storage: storage,
		HTTP:    New(app),
	})
	if err != nil {
		t.Fatalf("portal.New failed: %v", err)
	}

	ctx := context.Background()
	user := &portal.User{
		ID:            "u1",
		Username:      "alice",
		IsWhitelisted: boolPtr(true),
	}
	if err := storage.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if err := storage.RegisterToken(ctx, crypto.HashToken("tok1"), "u1"); err != nil {
		t.Fatalf("RegisterToken failed: %v", err)
	}

	return app, storage
}

func TestSessionEndpointShouldReportPublicAuthForNewClient(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/portal/session", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var decision portal.Decision
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decision.Surface != portal.SurfacePublicAuth {
		t.Errorf("Expected public auth surface, got %v", decision.Surface)
	}
}

func TestOnboardingShouldRejectMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/portal/onboarding/terms", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestOnboardingShouldRejectUnknownToken(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/portal/onboarding/terms", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer never-issued")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.StatusCode)
	}
}

func TestCreatePasswordEndpointShouldCompleteStep(t *testing.T) {
	app, storage := newTestApp(t)

	body := strings.NewReader(`{"password":"longenough"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portal/onboarding/password", body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok1")
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	user, err := storage.GetUserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if user.HasPassword == nil || !*user.HasPassword {
		t.Error("Expected hasPassword set after the request")
	}
}

func TestCreatePasswordEndpointShouldMapValidationError(t *testing.T) {
	app, _ := newTestApp(t)

	body := strings.NewReader(`{"password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portal/onboarding/password", body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok1")
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestWhitelistEndpointShouldRequireAdmin(t *testing.T) {
	app, _ := newTestApp(t)

	body := strings.NewReader(`{"userId":"u1","whitelisted":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/portal/admin/whitelist", body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok1")
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

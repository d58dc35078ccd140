package fiber

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/opendeck/portal"
	"github.com/opendeck/portal/adapters/memory"
)

// newGatedApp mounts the gate in front of a page handler that echoes the
// resolved surface.
func newGatedApp(t *testing.T) *fiber.App {
	t.Helper()

	app := fiber.New()
	adapter := New(app)

	if _, err := portal.New(portal.Config{
		Storage: memory.New(),
		HTTP:    adapter,
	}); err != nil {
		t.Fatalf("portal.New failed: %v", err)
	}

	app.Get("/*", adapter.Gate, func(c fiber.Ctx) error {
		surface := c.Locals("surface").(portal.Surface)
		return c.SendString(surface.String())
	})

	return app
}

func TestGateShouldRedirectAnonymousNavigationToLogin(t *testing.T) {
	app := newGatedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/deals", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Expected redirect to /login, got %q", loc)
	}
}

func TestGateShouldServeLoginToAnonymousClient(t *testing.T) {
	app := newGatedApp(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != portal.SurfacePublicAuth.String() {
		t.Errorf("Expected public auth surface, got %q", body)
	}
}

func TestGateShouldNotRedirectLoginToItself(t *testing.T) {
	app := newGatedApp(t)

	// A provider error lands on the login path with the code in the
	// query. The rewrite target equals the current URL, so the gate must
	// render instead of bouncing forever.
	req := httptest.NewRequest(http.MethodGet, "/login?error=access_denied", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestGateShouldCommitCallbackAndStripQuery(t *testing.T) {
	app := newGatedApp(t)

	callbackURL := "/?token=tok1&user=%7B%22id%22%3A%22u1%22%2C%22isWhitelisted%22%3Atrue%2C%22hasPassword%22%3Atrue%2C%22hasDiscord%22%3Atrue%2C%22termsAccepted%22%3Atrue%7D"
	req := httptest.NewRequest(http.MethodGet, callbackURL, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Expected redirect to stripped /, got %q", loc)
	}

	// Follow the rewrite with the minted client cookie: the committed
	// session now serves the dashboard.
	var clientCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "portal_client" {
			clientCookie = cookie
		}
	}
	if clientCookie == nil {
		t.Fatal("Expected the client cookie to be minted")
	}

	followUp := httptest.NewRequest(http.MethodGet, "/", nil)
	followUp.AddCookie(clientCookie)
	resp2, err := app.Test(followUp)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp2.Body.Close()

	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp2.StatusCode)
	}
	body, _ := io.ReadAll(resp2.Body)
	if string(body) != portal.SurfaceDashboard.String() {
		t.Errorf("Expected dashboard surface, got %q", body)
	}
}

// failingSessions fails every clear, as a backend outage would.
type failingSessions struct {
	*memory.Store
}

func (f *failingSessions) ClearSession(ctx context.Context, clientID string) error {
	return errors.New("session backend unavailable")
}

func TestRequireIdentityShouldLogFailedSessionClear(t *testing.T) {
	app := fiber.New()
	storage := memory.New()

	var logs bytes.Buffer
	_, err := portal.New(portal.Config{
		Storage:  storage,
		Sessions: &failingSessions{Store: storage},
		HTTP:     New(app),
		Logger:   slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatalf("portal.New failed: %v", err)
	}

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
	if !strings.Contains(logs.String(), "failed to clear session") {
		t.Error("Expected the failed clear to be logged")
	}
}

func TestExtractTokenShouldRequireBearerScheme(t *testing.T) {
	app := fiber.New()

	var got string
	app.Get("/probe", func(c fiber.Ctx) error {
		got = extractToken(c)
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer tok1", "tok1"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"bare token", "tok1", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if test.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, test.header)
			}
			if _, err := app.Test(req); err != nil {
				t.Fatalf("app.Test failed: %v", err)
			}
			if got != test.want {
				t.Errorf("Expected token %q, got %q", test.want, got)
			}
		})
	}
}

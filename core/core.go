package core

import (
	"log/slog"

	"github.com/opendeck/portal/pkg/crypto"
)

type Config struct {
	Storage Storage

	HTTP HTTPAdapter

	// Optional config
	Sessions       SessionStorage // overrides Storage for sessions (e.g. redis)
	Cache          ProfileCache
	DisableCache   bool
	PasswordHasher crypto.PasswordHandler
	Metrics        MetricsRecorder
	Logger         *slog.Logger
	BasePath       string
}

// Portal holds the wired services. Built by the composition root.
type Portal struct {
	Bootstrap *Bootstrapper
	Identity  *IdentityService
	Accounts  *AccountService
	Sessions  SessionStorage
	Logger    *slog.Logger
	BasePath  string
}

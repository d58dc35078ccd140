package portal

import (
	"log/slog"
	"time"

	"github.com/opendeck/portal/core"
	"github.com/opendeck/portal/pkg/cache"
	"github.com/opendeck/portal/pkg/crypto"
)

// interfaces
type (
	Storage        = core.Storage
	SessionStorage = core.SessionStorage
	UserStorage    = core.UserStorage
	ProfileCache   = core.ProfileCache

	HTTPAdapter = core.HTTPAdapter

	IdentityProvider  = core.IdentityProvider
	IdentityRegistrar = core.IdentityRegistrar
	MetricsRecorder   = core.MetricsRecorder

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Portal = core.Portal
	Config = core.Config

	Bootstrapper      = core.Bootstrapper
	IdentityService   = core.IdentityService
	AccountService    = core.AccountService
	CallbackProcessor = core.CallbackProcessor
)

type (
	Profile         = core.Profile
	User            = core.User
	Session         = core.Session
	Snapshot        = core.Snapshot
	Surface         = core.Surface
	RoutePlan       = core.RoutePlan
	Decision        = core.Decision
	CallbackResult  = core.CallbackResult
	CallbackOutcome = core.CallbackOutcome
)

const (
	SurfaceNone               = core.SurfaceNone
	SurfacePublicAuth         = core.SurfacePublicAuth
	SurfacePendingApproval    = core.SurfacePendingApproval
	SurfaceOnboardingPassword = core.SurfaceOnboardingPassword
	SurfaceOnboardingDiscord  = core.SurfaceOnboardingDiscord
	SurfaceOnboardingTerms    = core.SurfaceOnboardingTerms
	SurfaceDashboard          = core.SurfaceDashboard
)

const (
	LoginPath      = core.LoginPath
	ParseErrorCode = core.ParseErrorCode

	defaultBasePath = "/api/portal"
)

// Constructors & helpers (convenience re-exports)
var (
	NewArgon2     = crypto.NewArgon2
	ParseCallback = core.ParseCallback
	PlanFor       = core.PlanFor
)

var (
	ErrUnauthorized     = core.ErrUnauthorized
	ErrSessionNotFound  = core.ErrSessionNotFound
	ErrUserNotFound     = core.ErrUserNotFound
	ErrMalformedProfile = core.ErrMalformedProfile
)

var (
	ErrPasswordRequired  = core.ErrPasswordRequired
	ErrPasswordTooShort  = core.ErrPasswordTooShort
	ErrPasswordTooLong   = core.ErrPasswordTooLong
	ErrDiscordIDRequired = core.ErrDiscordIDRequired
	ErrUserIDRequired    = core.ErrUserIDRequired
	ErrAdminRequired     = core.ErrAdminRequired
)

var (
	ErrStorageRequired     = core.ErrStorageRequired
	ErrHTTPAdapterRequired = core.ErrHTTPAdapterRequired
)

// New wires the portal services and registers routes on the HTTP
// adapter. It is the single composition root; nothing else constructs
// the bootstrap pipeline.
func New(config Config) (*Portal, error) {
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}

	// Set Defaults

	sessions := config.Sessions
	if sessions == nil {
		sessions = config.Storage
	}

	profileCache := config.Cache
	if profileCache == nil && !config.DisableCache {
		profileCache = cache.New[*core.Profile](cache.Config{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		})
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	identity := core.NewIdentityService(config.Storage, profileCache, logger)
	accounts := core.NewAccountService(config.Storage, passwordHasher, identity, logger)
	bootstrap := core.NewBootstrapper(sessions, identity, identity, config.Metrics, logger)

	p := &Portal{
		Bootstrap: bootstrap,
		Identity:  identity,
		Accounts:  accounts,
		Sessions:  sessions,
		Logger:    logger,
		BasePath:  basePath,
	}

	if err := config.HTTP.RegisterRoutes(p); err != nil {
		return nil, err
	}

	return p, nil
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Storage  string `env:"STORAGE,   default=mongo"`

	Auth      AuthConfig
	Guard     GuardConfig
	SignIn    SignInConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Audit     AuditConfig
	Bootstrap BootstrapConfig
}

type AuthConfig struct {
	Secret        string        `env:"AUTH_SECRET, required"`
	SessionTTL    time.Duration `env:"SESSION_TTL,    default=168h"`
	SessionCookie string        `env:"SESSION_COOKIE, default=session_token"`
}

type GuardConfig struct {
	WaitTimeout time.Duration `env:"GUARD_WAIT_TIMEOUT, default=5s"`
}

// SignInConfig bounds failed sign-in attempts per email. MaxAttempts of
// zero disables throttling.
type SignInConfig struct {
	MaxAttempts int           `env:"SIGNIN_MAX_ATTEMPTS, default=5"`
	Lockout     time.Duration `env:"SIGNIN_LOCKOUT,      default=15m"`
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=user_admin"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// BootstrapConfig describes the admin account created on startup when the
// directory does not hold it yet. Empty Email disables bootstrapping.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	Name     string `env:"BOOTSTRAP_ADMIN_NAME, default=Administrator"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE %q", c.Storage)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if c.Guard.WaitTimeout <= 0 {
		return fmt.Errorf("config: GUARD_WAIT_TIMEOUT must be positive")
	}
	if c.SignIn.MaxAttempts < 0 {
		return fmt.Errorf("config: SIGNIN_MAX_ATTEMPTS must not be negative")
	}
	if c.SignIn.MaxAttempts > 0 && c.SignIn.Lockout <= 0 {
		return fmt.Errorf("config: SIGNIN_LOCKOUT must be positive")
	}
	if c.Bootstrap.Email != "" && len(c.Bootstrap.Password) < 8 {
		return fmt.Errorf("config: BOOTSTRAP_ADMIN_PASSWORD must be at least 8 characters")
	}
	return nil
}

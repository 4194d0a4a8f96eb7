package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// minSecretLen is the shortest session secret accepted in production.
const minSecretLen = 32

// placeholderSecrets are literal defaults that must never protect real sessions.
var placeholderSecrets = map[string]struct{}{
	"secret":    {},
	"changeme":  {},
	"change-me": {},
}

type Config struct {
	Port          string `env:"PORT,           default=5000"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	SessionSecret string `env:"SESSION_SECRET"`
	BcryptCost    int    `env:"BCRYPT_COST,    default=10"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Audit   AuditConfig

	// EphemeralSecret is set when SessionSecret was generated at startup.
	EphemeralSecret bool
}

type MongoConfig struct {
	URI       string        `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database  string        `env:"MONGO_DB,         default=auth_portal"`
	OpTimeout time.Duration `env:"MONGO_OP_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Addr      string        `env:"REDIS_ADDR,       default=localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB,         default=0"`
	OpTimeout time.Duration `env:"REDIS_OP_TIMEOUT, default=2s"`
}

type SessionConfig struct {
	TTL        time.Duration `env:"SESSION_TTL,         default=24h"`
	CookieName string        `env:"SESSION_COOKIE_NAME, default=sid"`

	// CookieSecure is "true"/"false"; empty means secure only in production.
	CookieSecure string `env:"SESSION_COOKIE_SECURE"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SecureCookies defaults to true in production unless set explicitly.
func (c *Config) SecureCookies() bool {
	if v, err := strconv.ParseBool(c.Session.CookieSecure); err == nil {
		return v
	}
	return c.IsProduction()
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the session secret policy. Outside production an empty
// secret is replaced by a random one that lasts until the process exits.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.SessionSecret)
	if _, ok := placeholderSecrets[strings.ToLower(secret)]; ok {
		return errors.New("config: SESSION_SECRET must not be a placeholder value")
	}

	if c.IsProduction() {
		if len(secret) < minSecretLen {
			return fmt.Errorf("config: SESSION_SECRET must be at least %d bytes in production", minSecretLen)
		}
		return nil
	}

	if secret == "" {
		b := make([]byte, minSecretLen)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("config: generate session secret: %w", err)
		}
		c.SessionSecret = hex.EncodeToString(b)
		c.EphemeralSecret = true
	}
	return nil
}

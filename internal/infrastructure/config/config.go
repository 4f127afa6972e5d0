package config

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sethvargo/go-envconfig"

	"github.com/elikia/membership-auth/internal/core/domain"
)

const minSecretLength = 32

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type AuthConfig struct {
	JWTSecret        string        `env:"JWT_SECRET"`
	TokenLifetime    time.Duration `env:"TOKEN_LIFETIME,    default=1h"`
	TokenIssuer      string        `env:"TOKEN_ISSUER,      default=membership-auth"`
	LockoutThreshold int           `env:"LOCKOUT_THRESHOLD, default=3"`
	LockoutDuration  time.Duration `env:"LOCKOUT_DURATION,  default=30m"`
	BcryptCost       int           `env:"BCRYPT_COST,       default=10"`
	LoginRateLimit   float64       `env:"LOGIN_RATE_LIMIT,  default=10"`
	LoginLockTTL     time.Duration `env:"LOGIN_LOCK_TTL,    default=5s"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=membership"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=0"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether the service runs with developer conveniences
// such as pretty console logs.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the auth core cannot run with.
func (c *Config) Validate() error {
	a := c.Auth
	switch {
	case utf8.RuneCountInString(a.JWTSecret) < minSecretLength:
		return fmt.Errorf("%w: JWT_SECRET must be at least %d characters", domain.ErrConfiguration, minSecretLength)
	case a.TokenLifetime <= 0:
		return fmt.Errorf("%w: TOKEN_LIFETIME must be positive", domain.ErrConfiguration)
	case a.LockoutThreshold <= 0:
		return fmt.Errorf("%w: LOCKOUT_THRESHOLD must be positive", domain.ErrConfiguration)
	case a.LockoutDuration <= 0:
		return fmt.Errorf("%w: LOCKOUT_DURATION must be positive", domain.ErrConfiguration)
	case a.LoginRateLimit <= 0:
		return fmt.Errorf("%w: LOGIN_RATE_LIMIT must be positive", domain.ErrConfiguration)
	case a.LoginLockTTL <= 0:
		return fmt.Errorf("%w: LOGIN_LOCK_TTL must be positive", domain.ErrConfiguration)
	}
	return nil
}

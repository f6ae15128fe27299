package config

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	// RequireEmailVerification blocks password login for pending accounts.
	RequireEmailVerification bool `env:"REQUIRE_EMAIL_VERIFICATION, default=true"`
	// AllowAccountLinking permits a federated sign-in to silently attach a
	// new provider identity to an existing account matched by email.
	AllowAccountLinking bool          `env:"ALLOW_ACCOUNT_LINKING,      default=true"`
	SessionTTL          time.Duration `env:"SESSION_TTL,                default=24h"`
	RememberMeTTL       time.Duration `env:"REMEMBER_ME_SESSION_TTL,    default=168h"`
	DefaultRoleName     string        `env:"DEFAULT_ROLE,               default=member"`
	// TwoFactorKey is the hex-encoded AES-256 key sealing stored 2FA secrets.
	TwoFactorKey string `env:"TWO_FACTOR_KEY"`
	// LoginAttemptLimit and LoginAttemptWindow bound password attempts per
	// email in the Redis fixed window.
	LoginAttemptLimit  int           `env:"LOGIN_ATTEMPT_LIMIT,  default=10"`
	LoginAttemptWindow time.Duration `env:"LOGIN_ATTEMPT_WINDOW, default=15m"`
}

// TwoFactorKeyBytes decodes the sealing key. An empty key is allowed; 2FA
// verification then fails with a config error, not a user error.
func (a AuthConfig) TwoFactorKeyBytes() ([]byte, error) {
	if a.TwoFactorKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(a.TwoFactorKey)
	if err != nil {
		return nil, fmt.Errorf("TWO_FACTOR_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("TWO_FACTOR_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=content_platform"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/voxauth/pkg/httpx"
)

// Config is read from the environment at startup. Every field has a usable
// default so a bare `auth` binary starts against a local sqlite file.
type Config struct {
	Issuer            string        `env:"AUTH_ISSUER"              envDefault:"voxauth"`
	SessionSecret     string        `env:"AUTH_SESSION_SECRET"`      // Optional: raw HMAC secret, at least 32 bytes
	SessionSecretFile string        `env:"AUTH_SESSION_SECRET_FILE"` // Optional: file holding the secret
	SessionTTL        time.Duration `env:"AUTH_SESSION_TTL"         envDefault:"1h"`
	OTPTTL            time.Duration `env:"AUTH_OTP_TTL"             envDefault:"10m"`

	DatabaseDriver string `env:"AUTH_DATABASE_DRIVER" envDefault:"sqlite"` // sqlite or postgres
	DatabaseFile   string `env:"AUTH_DATABASE_FILE"   envDefault:"auth.db"`
	DatabaseURL    string `env:"AUTH_DATABASE_URL"` // Required for postgres
	PepperFile     string `env:"AUTH_PEPPER_FILE"     envDefault:"pepper"`

	SMTP    SMTPConfig    `envPrefix:"AUTH_SMTP_"`
	Speech  SpeechConfig  `envPrefix:"AUTH_SPEECH_"`
	Limiter LimiterConfig `envPrefix:"AUTH_"`
	Audio   AudioConfig   `envPrefix:"AUTH_AUDIO_"`

	// RateLimits start from httpx.DefaultLimits; unset variables keep them.
	RateLimits httpx.Limits `envPrefix:"RATELIMIT_"`

	Env                  string        `env:"ENV"                   envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                 int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// SMTPConfig selects the mail transport. With no host, codes are written to
// the log instead of being sent.
type SMTPConfig struct {
	Host     string        `env:"HOST"`
	Port     int           `env:"PORT"     envDefault:"465"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	From     string        `env:"FROM"     envDefault:"no-reply@localhost"`
	Timeout  time.Duration `env:"TIMEOUT"  envDefault:"10s"`
	Retries  uint64        `env:"RETRIES"  envDefault:"3"`
}

type SpeechConfig struct {
	Provider        string        `env:"PROVIDER"         envDefault:"disabled"` // google or disabled
	CredentialsFile string        `env:"CREDENTIALS_FILE"`
	Encoding        string        `env:"ENCODING"         envDefault:"LINEAR16"`
	SampleRateHertz int32         `env:"SAMPLE_RATE"      envDefault:"16000"`
	LanguageCode    string        `env:"LANGUAGE"         envDefault:"en-US"`
	Timeout         time.Duration `env:"TIMEOUT"          envDefault:"10s"`
	Retries         uint64        `env:"RETRIES"          envDefault:"2"`
}

// LimiterConfig caps OTP and voice attempts. Redis is used when an address
// is set, so the budget is shared across replicas.
type LimiterConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"         envDefault:"0"`
	MaxAttempts   int           `env:"MAX_ATTEMPTS"     envDefault:"5"`
	Window        time.Duration `env:"ATTEMPT_WINDOW"   envDefault:"15m"`
}

type AudioConfig struct {
	TempDir  string `env:"TEMP_DIR"`                        // Defaults to os.TempDir()
	MaxBytes int64  `env:"MAX_BYTES" envDefault:"10485760"` // 10 MiB
}

var ErrInvalidConfig = errors.New("invalid configuration")

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	cfg := Config{RateLimits: httpx.DefaultLimits()}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			return fmt.Errorf("%w: AUTH_DATABASE_FILE is required for sqlite", ErrInvalidConfig)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: AUTH_DATABASE_URL is required for postgres", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.DatabaseDriver)
	}

	switch c.Speech.Provider {
	case "google", "disabled":
	default:
		return fmt.Errorf("%w: unknown speech provider %q", ErrInvalidConfig, c.Speech.Provider)
	}

	if c.SessionTTL <= 0 || c.OTPTTL <= 0 {
		return fmt.Errorf("%w: session and OTP TTLs must be positive", ErrInvalidConfig)
	}
	if c.Limiter.MaxAttempts <= 0 || c.Limiter.Window <= 0 {
		return fmt.Errorf("%w: attempt limit and window must be positive", ErrInvalidConfig)
	}
	for name, l := range map[string]httpx.RateLimitConfig{
		"STRICT":   c.RateLimits.Strict,
		"MODERATE": c.RateLimits.Moderate,
		"PUBLIC":   c.RateLimits.Public,
	} {
		if l.RequestsPerWindow <= 0 || l.Window <= 0 || l.Burst <= 0 {
			return fmt.Errorf("%w: RATELIMIT_%s_* must be positive", ErrInvalidConfig, name)
		}
	}
	if c.Audio.MaxBytes <= 0 {
		return fmt.Errorf("%w: AUTH_AUDIO_MAX_BYTES must be positive", ErrInvalidConfig)
	}
	return nil
}

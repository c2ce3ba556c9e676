package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/voxauth/pkg/httpx"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "voxauth", cfg.Issuer)
	require.Equal(t, time.Hour, cfg.SessionTTL)
	require.Equal(t, 10*time.Minute, cfg.OTPTTL)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)

	require.Empty(t, cfg.SMTP.Host)
	require.Equal(t, 465, cfg.SMTP.Port)
	require.Equal(t, uint64(3), cfg.SMTP.Retries)

	require.Equal(t, "disabled", cfg.Speech.Provider)
	require.Equal(t, "LINEAR16", cfg.Speech.Encoding)
	require.Equal(t, int32(16000), cfg.Speech.SampleRateHertz)
	require.Equal(t, "en-US", cfg.Speech.LanguageCode)

	require.Empty(t, cfg.Limiter.RedisAddr)
	require.Equal(t, 5, cfg.Limiter.MaxAttempts)
	require.Equal(t, 15*time.Minute, cfg.Limiter.Window)

	require.Equal(t, int64(10<<20), cfg.Audio.MaxBytes)
	require.Equal(t, httpx.DefaultLimits(), cfg.RateLimits)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AUTH_ISSUER", "voxauth-staging")
	t.Setenv("AUTH_SESSION_TTL", "30m")
	t.Setenv("AUTH_DATABASE_DRIVER", "postgres")
	t.Setenv("AUTH_DATABASE_URL", "postgres://auth@db/auth")
	t.Setenv("AUTH_SMTP_HOST", "smtp.example.com")
	t.Setenv("AUTH_SMTP_PORT", "587")
	t.Setenv("AUTH_SMTP_FROM", "auth@example.com")
	t.Setenv("AUTH_SPEECH_PROVIDER", "google")
	t.Setenv("AUTH_SPEECH_LANGUAGE", "en-AU")
	t.Setenv("AUTH_REDIS_ADDR", "redis:6379")
	t.Setenv("AUTH_MAX_ATTEMPTS", "3")
	t.Setenv("AUTH_ATTEMPT_WINDOW", "5m")
	t.Setenv("AUTH_AUDIO_MAX_BYTES", "2048")
	t.Setenv("PORT", "9090")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")
	t.Setenv("RATELIMIT_STRICT_WINDOW", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "voxauth-staging", cfg.Issuer)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, "postgres://auth@db/auth", cfg.DatabaseURL)
	require.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	require.Equal(t, 587, cfg.SMTP.Port)
	require.Equal(t, "auth@example.com", cfg.SMTP.From)
	require.Equal(t, "google", cfg.Speech.Provider)
	require.Equal(t, "en-AU", cfg.Speech.LanguageCode)
	require.Equal(t, "redis:6379", cfg.Limiter.RedisAddr)
	require.Equal(t, 3, cfg.Limiter.MaxAttempts)
	require.Equal(t, 5*time.Minute, cfg.Limiter.Window)
	require.Equal(t, int64(2048), cfg.Audio.MaxBytes)
	require.Equal(t, 9090, cfg.Port)

	// Unset fields keep their defaults.
	require.Equal(t, 50, cfg.RateLimits.Strict.RequestsPerWindow)
	require.Equal(t, 30*time.Second, cfg.RateLimits.Strict.Window)
	require.Equal(t, httpx.DefaultLimits().Strict.Burst, cfg.RateLimits.Strict.Burst)
	require.Equal(t, httpx.DefaultLimits().Public, cfg.RateLimits.Public)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"AUTH_DATABASE_DRIVER": "mysql"}},
		{"postgres without url", map[string]string{"AUTH_DATABASE_DRIVER": "postgres"}},
		{"unknown speech provider", map[string]string{"AUTH_SPEECH_PROVIDER": "whisper"}},
		{"zero session ttl", map[string]string{"AUTH_SESSION_TTL": "0s"}},
		{"zero attempts", map[string]string{"AUTH_MAX_ATTEMPTS": "0"}},
		{"zero burst", map[string]string{"RATELIMIT_MODERATE_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("AUTH_OTP_TTL", "ten minutes")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}

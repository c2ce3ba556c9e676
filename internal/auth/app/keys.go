package app

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/voxauth/pkg/jwtx"
)

// InitSessionSecret returns the HMAC secret for session tokens.
//
// Sources, in order:
//   - AUTH_SESSION_SECRET_FILE: the file contents, surrounding whitespace
//     trimmed.
//   - AUTH_SESSION_SECRET: the raw value.
//   - neither: a random secret held only in memory. Every issued token
//     becomes invalid when the service restarts.
func InitSessionSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	var secret []byte

	switch {
	case cfg.SessionSecretFile != "":
		raw, err := os.ReadFile(filepath.Clean(cfg.SessionSecretFile)) // #nosec G304 - operator supplied path
		if err != nil {
			return nil, fmt.Errorf("read session secret: %w", err)
		}
		secret = bytes.TrimSpace(raw)
		logger.Info("session secret loaded", "source", "file", "path", cfg.SessionSecretFile)

	case cfg.SessionSecret != "":
		secret = []byte(cfg.SessionSecret)
		logger.Info("session secret loaded", "source", "env")

	default:
		secret = make([]byte, jwtx.MinSecretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("no session secret configured, generated an ephemeral one; sessions will not survive a restart")
	}

	if len(secret) < jwtx.MinSecretSize {
		return nil, fmt.Errorf("%w: need at least %d bytes", jwtx.ErrWeakSecret, jwtx.MinSecretSize)
	}
	return secret, nil
}

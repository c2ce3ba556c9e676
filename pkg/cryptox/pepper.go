package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Argon2id parameters.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

// ErrNoPepper is returned when a hash is requested before a pepper has been
// set or loaded.
var ErrNoPepper = errors.New("cryptox: pepper not configured")

var (
	pepperMu sync.RWMutex
	pepper   string
)

// SetPepper installs the server-wide pepper appended to every password
// before hashing.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// LoadPepperFile reads the pepper from file, creating it with fresh random
// content on first start.
func LoadPepperFile(file string) error {
	if strings.TrimSpace(file) == "" {
		return fmt.Errorf("cryptox: empty pepper path")
	}

	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return fmt.Errorf("cryptox: create pepper dir: %w", err)
	}

	raw, err := os.ReadFile(file) // #nosec G304 - operator supplied path
	switch {
	case err == nil:
		SetPepper(strings.TrimSpace(string(raw)))
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("cryptox: read pepper: %w", err)
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("cryptox: generate pepper: %w", err)
	}
	p := base64.RawURLEncoding.EncodeToString(buf)

	if err := os.WriteFile(file, []byte(p), 0o600); err != nil {
		return fmt.Errorf("cryptox: write pepper: %w", err)
	}

	SetPepper(p)
	return nil
}

func currentPepper() (string, error) {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	if pepper == "" {
		return "", ErrNoPepper
	}
	return pepper, nil
}

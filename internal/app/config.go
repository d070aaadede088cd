package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"

	"cipherbox/internal/domain"
	"cipherbox/internal/store"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "CIPHERBOX_"

// minPassphraseLength defines the minimum number of characters required for a passphrase.
const minPassphraseLength = 12

// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
var ErrWeakPassphrase = fmt.Errorf(
	"passphrase is too weak (must be at least %d characters and include upper, lower, "+
		"number, and symbol)",
	minPassphraseLength,
)

// Config holds runtime wiring options for building a box.
type Config struct {
	Home     string         `koanf:"home"` // storage directory, e.g. $HOME/.cipherbox
	Storage  StorageConfig  `koanf:"storage"`
	Identity IdentityConfig `koanf:"identity"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

type StorageConfig struct {
	Backend    string `koanf:"backend"` // file or badger
	SyncWrites bool   `koanf:"sync_writes"`
}

type IdentityConfig struct {
	// Passphrase, when set, seals the identity record at rest.
	Passphrase string `koanf:"passphrase"`
	Mode       string `koanf:"mode"` // complete or public, used by open-with
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Default returns the built-in configuration.
func Default() Config {
	home := ".cipherbox"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".cipherbox")
	}
	return Config{
		Home:     home,
		Storage:  StorageConfig{Backend: string(store.KindFile)},
		Identity: IdentityConfig{Mode: domain.IdentityModeComplete.String()},
		Log:      LogConfig{Level: "warning", Format: "text"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), the environment and overrides keyed by dotted config path.
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// CIPHERBOX_STORAGE_SYNC_WRITES -> storage.sync_writes
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)
		return strings.Replace(s, "_", ".", 1)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformer), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	for key, val := range overrides {
		if err := k.Set(key, val); err != nil {
			return Config{}, fmt.Errorf("override %s: %w", key, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown enumerations and weak passphrases.
func (c Config) Validate() error {
	var errs []error
	if c.Home == "" {
		errs = append(errs, errors.New("home must not be empty"))
	}
	switch store.Kind(c.Storage.Backend) {
	case store.KindFile, store.KindBadger:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if _, err := domain.ParseIdentityMode(c.Identity.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Identity.Passphrase != "" && !isSecurePassphrase(c.Identity.Passphrase) {
		errs = append(errs, ErrWeakPassphrase)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

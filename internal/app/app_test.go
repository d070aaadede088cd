package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cipherbox/internal/store"
)

func TestLoad_Layers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cipherbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
home: /from/file
storage:
  backend: badger
log:
  level: info
`), 0o600))

	t.Setenv("CIPHERBOX_LOG_LEVEL", "debug")
	t.Setenv("CIPHERBOX_STORAGE_SYNC_WRITES", "true")

	cfg, err := Load(path, map[string]any{"home": dir})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Home)
	assert.Equal(t, string(store.KindBadger), cfg.Storage.Backend)
	assert.True(t, cfg.Storage.SyncWrites)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "complete", cfg.Identity.Mode)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, string(store.KindFile), cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Home)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "tape"
	cfg.Identity.Mode = "partial"
	cfg.Log.Level = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tape")
	assert.Contains(t, err.Error(), "partial")

	cfg = Default()
	cfg.Identity.Passphrase = "short"
	assert.ErrorIs(t, cfg.Validate(), ErrWeakPassphrase)

	cfg.Identity.Passphrase = "Correct-Horse-42"
	assert.NoError(t, cfg.Validate())
}

func TestIsSecurePassphrase(t *testing.T) {
	assert.False(t, isSecurePassphrase("alllowercase12!"))
	assert.False(t, isSecurePassphrase("NoDigitsHere!!"))
	assert.False(t, isSecurePassphrase("NoSymbols1234"))
	assert.False(t, isSecurePassphrase("Sh0rt!"))
	assert.True(t, isSecurePassphrase("Valid-Passphrase-1"))
}

func TestWire_OpenBothBackends(t *testing.T) {
	for _, backend := range []store.Kind{store.KindFile, store.KindBadger} {
		t.Run(string(backend), func(t *testing.T) {
			cfg := Default()
			cfg.Home = t.TempDir()
			cfg.Storage.Backend = string(backend)
			cfg.Metrics.Enabled = true
			cfg.Log.Level = "error"

			w, err := NewWire(cfg)
			require.NoError(t, err)
			require.NotNil(t, w.Metrics)

			b, err := w.Open()
			require.NoError(t, err)
			fp, err := b.LocalFingerprint()
			require.NoError(t, err)
			exported, err := b.ExportIdentity()
			require.NoError(t, err)
			require.NoError(t, b.Close())

			b, err = w.OpenWith(exported)
			require.NoError(t, err)
			again, err := b.LocalFingerprint()
			require.NoError(t, err)
			assert.Equal(t, fp, again)
			require.NoError(t, b.Close())
		})
	}
}

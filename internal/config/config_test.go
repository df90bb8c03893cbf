package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultUploadConcurrency, cfg.UploadConcurrency)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval())
}

func TestConfig_Validate_ErrorsOnInvalidInputs(t *testing.T) {
	t.Run("bad server url", func(t *testing.T) {
		cfg := &Config{ServerURL: "ftp://bad.example.com"}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server url")
	})

	t.Run("no host", func(t *testing.T) {
		cfg := &Config{ServerURL: "http://"}
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_Validate_NormalizesPath(t *testing.T) {
	cfg := &Config{
		ServerURL: "http://127.0.0.1:8080",
		Path:      "config.json",
	}
	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.Path))
}

func TestConfig_SaveAndLoad_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.json")

	cfg := &Config{
		ServerURL:         "http://127.0.0.1:8080",
		UploadConcurrency: 8,
		PollIntervalSecs:  5,
	}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.ServerURL, loaded.ServerURL)
	assert.Equal(t, 8, loaded.UploadConcurrency)
	assert.Equal(t, 5*time.Second, loaded.PollInterval())
	assert.Equal(t, path, loaded.Path)
}

func TestConfig_Load_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/artifexhq/artifex/internal/utils"
)

var (
	home, _           = os.UserHomeDir()
	DefaultConfigPath = filepath.Join(home, ".artifex", "config.json")
	DefaultServerURL  = "https://registry.artifex.dev"
)

const (
	DefaultUploadConcurrency = 4
	DefaultPollInterval      = 2 * time.Second
)

type Config struct {
	ServerURL         string `json:"server_url"`
	UploadConcurrency int    `json:"upload_concurrency"`
	PollIntervalSecs  int    `json:"poll_interval_secs"`
	Path              string `json:"-"`
}

func (c *Config) Validate() error {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}

	if c.UploadConcurrency <= 0 {
		c.UploadConcurrency = DefaultUploadConcurrency
	}
	if c.PollIntervalSecs <= 0 {
		c.PollIntervalSecs = int(DefaultPollInterval / time.Second)
	}

	if c.Path != "" {
		abs, err := utils.ResolvePath(c.Path)
		if err != nil {
			return fmt.Errorf("invalid config path %q: %w", c.Path, err)
		}
		c.Path = abs
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSecs) * time.Second
}

func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	return &cfg, nil
}

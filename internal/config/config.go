package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "vidvault"
	configFileName = "config.yaml"
	envPrefix      = "VIDVAULT_"
)

// Config holds the configuration options for the application.
type Config struct {
	DownloadDir       string        `yaml:"downloadDir,omitempty"`
	DataDir           string        `yaml:"dataDir,omitempty"`
	CatalogURL        string        `yaml:"catalogURL,omitempty"`
	ProbeURL          string        `yaml:"probeURL,omitempty"`
	MinFreeBytes      int64         `yaml:"minFreeBytes,omitempty"`
	ProgressInterval  time.Duration `yaml:"progressInterval,omitempty"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond,omitempty"`
	Debug             bool          `yaml:"debug,omitempty"`
	LogFile           string        `yaml:"logFile,omitempty"`
}

// DBPath is the bbolt file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "vidvault.db")
}

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// Load reads the yaml file at path. A missing or empty file yields the
// defaults. Values from a .env file in the working directory and VIDVAULT_*
// environment variables take precedence over the file.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readFile(path string) (*Config, error) {
	defaults := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &defaults, nil
		}

		return nil, err
	}

	if len(b) == 0 {
		return &defaults, nil
	}

	var cfg Config

	err = yaml.Unmarshal(b, &cfg)
	if err != nil {
		return nil, err
	}

	return &Config{
		DownloadDir:       zeroOr(cfg.DownloadDir, defaults.DownloadDir),
		DataDir:           zeroOr(cfg.DataDir, defaults.DataDir),
		CatalogURL:        zeroOr(cfg.CatalogURL, defaults.CatalogURL),
		ProbeURL:          zeroOr(cfg.ProbeURL, defaults.ProbeURL),
		MinFreeBytes:      zeroOr(cfg.MinFreeBytes, defaults.MinFreeBytes),
		ProgressInterval:  zeroOr(cfg.ProgressInterval, defaults.ProgressInterval),
		RequestsPerSecond: zeroOr(cfg.RequestsPerSecond, defaults.RequestsPerSecond),
		Debug:             zeroOr(cfg.Debug, defaults.Debug),
		LogFile:           zeroOr(cfg.LogFile, defaults.LogFile),
	}, nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"DOWNLOAD_DIR": &cfg.DownloadDir,
		"DATA_DIR":     &cfg.DataDir,
		"CATALOG_URL":  &cfg.CatalogURL,
		"PROBE_URL":    &cfg.ProbeURL,
		"LOG_FILE":     &cfg.LogFile,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("MIN_FREE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return envError("MIN_FREE_BYTES", err)
		}

		cfg.MinFreeBytes = n
	}

	if v, ok := lookup("PROGRESS_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("PROGRESS_INTERVAL", err)
		}

		cfg.ProgressInterval = d
	}

	if v, ok := lookup("REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError("REQUESTS_PER_SECOND", err)
		}

		cfg.RequestsPerSecond = f
	}

	if v, ok := lookup("DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError("DEBUG", err)
		}

		cfg.Debug = b
	}

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return v, ok && v != ""
}

func envError(name string, err error) error {
	return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
}

func DefaultConfig() Config {
	return Config{
		DownloadDir:       downloadDir,
		DataDir:           dataDir,
		CatalogURL:        catalogURL,
		ProbeURL:          probeURL,
		MinFreeBytes:      minFreeBytes,
		ProgressInterval:  progressInterval,
		RequestsPerSecond: requestsPerSecond,
		LogFile:           logFile,
	}
}

// zeroOr returns def if v is the zero value for its type.
func zeroOr[T any](v, def T) T {
	if reflect.ValueOf(v).IsZero() {
		return def
	}

	return v
}

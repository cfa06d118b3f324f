// Package config holds the runtime settings of the gridform admin: the listen
// address, the backend API, upload storage, UI theming and the app-state file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-gridform/pkg/queryparam"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRIDFORM_"

// Storage modes.
const (
	StorageAPI = "api"
	StorageS3  = "s3"
)

// Config consolidates all settings.
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	API      APIConfig      `yaml:"api" json:"api"`
	Storage  StorageConfig  `yaml:"storage" json:"storage"`
	UI       UIConfig       `yaml:"ui" json:"ui"`
	AppState AppStateConfig `yaml:"appState" json:"appState"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
	SchemaDir       string        `yaml:"schemaDir" json:"schemaDir"`
}

// APIConfig points at the backend REST API.
type APIConfig struct {
	BaseURL string        `yaml:"baseUrl" json:"baseUrl"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// StorageConfig selects how upload slots are issued. In "api" mode the backend
// presigns; in "s3" mode the admin signs URLs itself.
type StorageConfig struct {
	Mode            string        `yaml:"mode" json:"mode"`
	Bucket          string        `yaml:"bucket" json:"bucket"`
	Region          string        `yaml:"region" json:"region"`
	Endpoint        string        `yaml:"endpoint" json:"endpoint"`
	AccessKeyID     string        `yaml:"accessKeyId" json:"accessKeyId"`
	SecretAccessKey string        `yaml:"secretAccessKey" json:"-"`
	KeyPrefix       string        `yaml:"keyPrefix" json:"keyPrefix"`
	PresignTTL      time.Duration `yaml:"presignTTL" json:"presignTTL"`
	UsePathStyle    bool          `yaml:"usePathStyle" json:"usePathStyle"`
	Concurrency     int           `yaml:"concurrency" json:"concurrency"`
}

// UIConfig controls rendering defaults.
type UIConfig struct {
	Theme       string `yaml:"theme" json:"theme"`
	Variant     string `yaml:"variant" json:"variant"`
	// ThemeFile is an optional go-theme manifest (YAML) supplying tokens,
	// template partials and assets for Theme.
	ThemeFile   string `yaml:"themeFile" json:"themeFile"`
	PageSize    int    `yaml:"pageSize" json:"pageSize"`
	AssetPrefix string `yaml:"assetPrefix" json:"assetPrefix"`
}

// AppStateConfig locates the persisted app context.
type AppStateConfig struct {
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			Mode:        StorageAPI,
			PresignTTL:  15 * time.Minute,
			Concurrency: 4,
		},
		UI: UIConfig{
			Theme:       "default",
			Variant:     "light",
			PageSize:    queryparam.DefaultSize,
			AssetPrefix: "/assets/",
		},
		AppState: AppStateConfig{
			Path: "gridform-state.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file yields the defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays GRIDFORM_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dest *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dest = strings.TrimSpace(v)
		}
	}
	dur := func(name string, dest *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Field: EnvPrefix + name, Message: "must be a duration"}
		}
		*dest = d
		return nil
	}
	num := func(name string, dest *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Field: EnvPrefix + name, Message: "must be an integer"}
		}
		*dest = n
		return nil
	}

	str("ADDR", &c.Server.Addr)
	str("SCHEMA_DIR", &c.Server.SchemaDir)
	str("API_BASE_URL", &c.API.BaseURL)
	str("STORAGE_MODE", &c.Storage.Mode)
	str("S3_BUCKET", &c.Storage.Bucket)
	str("S3_REGION", &c.Storage.Region)
	str("S3_ENDPOINT", &c.Storage.Endpoint)
	str("S3_ACCESS_KEY_ID", &c.Storage.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.Storage.SecretAccessKey)
	str("S3_KEY_PREFIX", &c.Storage.KeyPrefix)
	str("THEME", &c.UI.Theme)
	str("THEME_VARIANT", &c.UI.Variant)
	str("THEME_FILE", &c.UI.ThemeFile)
	str("STATE_PATH", &c.AppState.Path)
	str("LOG_LEVEL", &c.Logging.Level)

	if v, ok := lookup(EnvPrefix + "S3_PATH_STYLE"); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &ConfigError{Field: EnvPrefix + "S3_PATH_STYLE", Message: "must be a boolean"}
		}
		c.Storage.UsePathStyle = parsed
	}
	for _, step := range []error{
		dur("API_TIMEOUT", &c.API.Timeout),
		dur("PRESIGN_TTL", &c.Storage.PresignTTL),
		num("PAGE_SIZE", &c.UI.PageSize),
		num("UPLOAD_CONCURRENCY", &c.Storage.Concurrency),
	} {
		if step != nil {
			return step
		}
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return &ConfigError{Field: "server.addr", Message: "is required"}
	}
	base, err := url.Parse(c.API.BaseURL)
	if err != nil || !base.IsAbs() {
		return &ConfigError{Field: "api.baseUrl", Message: "must be an absolute URL"}
	}
	if c.API.Timeout <= 0 {
		return &ConfigError{Field: "api.timeout", Message: "must be greater than 0"}
	}
	switch c.Storage.Mode {
	case StorageAPI:
	case StorageS3:
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return &ConfigError{Field: "storage.bucket", Message: "is required in s3 mode"}
		}
		if (c.Storage.AccessKeyID == "") != (c.Storage.SecretAccessKey == "") {
			return &ConfigError{Field: "storage.accessKeyId", Message: "must be set together with secretAccessKey"}
		}
	default:
		return &ConfigError{Field: "storage.mode", Message: "must be one of api, s3"}
	}
	if c.Storage.PresignTTL <= 0 {
		return &ConfigError{Field: "storage.presignTTL", Message: "must be greater than 0"}
	}
	if c.Storage.Concurrency < 0 {
		return &ConfigError{Field: "storage.concurrency", Message: "must not be negative"}
	}
	if !queryparam.ValidSize(c.UI.PageSize) {
		return &ConfigError{Field: "ui.pageSize", Message: fmt.Sprintf("must be one of %v", queryparam.AllowedSizes)}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}

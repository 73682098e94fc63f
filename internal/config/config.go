package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "taksi.json"

	// DefaultPort is the default server port.
	DefaultPort = 8637

	// DefaultHost is the default bind host.
	DefaultHost = "0.0.0.0"

	// DefaultDataDir is the default collection storage directory.
	DefaultDataDir = "data"

	// DefaultStaticDir is the default directory of the served site.
	DefaultStaticDir = "public"
)

// Environment variables overriding the admin credentials, so the secret
// never has to live in the config file at all.
const (
	EnvAdminUsername = "TAKSI_ADMIN_USERNAME"
	EnvAdminPassword = "TAKSI_ADMIN_PASSWORD"
)

// Backend names accepted in Data.Backend.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config represents the complete taksi.json configuration.
type Config struct {
	// Name is the site name, used in logs.
	Name string `json:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Data contains collection storage configuration.
	Data DataConfig `json:"data,omitempty"`

	// Admin contains the operator credentials.
	Admin AdminConfig `json:"admin,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing the site's static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/").
	Prefix string `json:"prefix,omitempty"`
}

// DataConfig contains collection storage settings.
type DataConfig struct {
	// Backend selects the store: "file" (default), "memory", or "s3".
	Backend string `json:"backend,omitempty"`

	// Dir is the data directory for the file backend.
	Dir string `json:"dir,omitempty"`

	// S3 configures the s3 backend.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains settings for the S3 storage backend.
type S3Config struct {
	// Bucket is the S3 bucket name.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the object key prefix for collections.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`
}

// AdminConfig contains the operator credentials for the session gate.
// Both values can be overridden through TAKSI_ADMIN_USERNAME and
// TAKSI_ADMIN_PASSWORD.
type AdminConfig struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: "taksi2",
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Static: StaticConfig{
			Dir:    DefaultStaticDir,
			Prefix: "/",
		},
		Data: DataConfig{
			Backend: BackendFile,
			Dir:     DefaultDataDir,
		},
		Admin: AdminConfig{
			Username: "Admin",
			Password: "Admin123",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for taksi.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. A missing
// file yields the defaults rather than an error; a malformed file is an
// error, since silently ignoring it would run the site with the wrong
// credentials.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	cfg.configPath = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Address returns the listen address string.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "taksi2"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Static.Dir == "" {
		c.Static.Dir = DefaultStaticDir
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/"
	}
	if c.Data.Backend == "" {
		c.Data.Backend = BackendFile
	}
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Admin.Username == "" {
		c.Admin.Username = "Admin"
	}
	if c.Admin.Password == "" {
		c.Admin.Password = "Admin123"
	}
}

// applyEnv overrides credentials from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAdminUsername); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		c.Admin.Password = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: port must be between 0 and 65535, got %d", c.Server.Port)
	}
	switch c.Data.Backend {
	case BackendFile, BackendMemory:
	case BackendS3:
		if c.Data.S3.Bucket == "" {
			return fmt.Errorf("config: s3 backend requires a bucket")
		}
	default:
		return fmt.Errorf("config: unknown data backend %q", c.Data.Backend)
	}
	return nil
}

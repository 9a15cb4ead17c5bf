package config

import (
	"encoding/json"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/viaduct-dev/viaduct/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "viaduct.json"

	// DefaultPort is the default development server port.
	DefaultPort = 3000

	// DefaultHost is the default development server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default build output directory.
	DefaultOutput = "dist"

	// DefaultPublic is the default static assets directory.
	DefaultPublic = "public"
)

// Config represents the complete viaduct.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Port is the development server port.
	Port int `json:"port,omitempty"`

	// Host is the host the development server binds to.
	Host string `json:"host,omitempty"`

	// BaseURL is the canonical URL the site is served from once deployed.
	BaseURL string `json:"baseURL,omitempty"`

	// Public is the static assets directory served by the dev server.
	Public string `json:"public,omitempty"`

	// Build contains production build configuration.
	Build BuildConfig `json:"build,omitempty"`

	// Deploy contains deployment configuration.
	Deploy DeployConfig `json:"deploy,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// BuildConfig contains production build settings.
type BuildConfig struct {
	// Output is the output directory for builds.
	Output string `json:"output,omitempty"`
}

// DeployConfig contains S3 deployment settings.
type DeployConfig struct {
	// Bucket is the S3 bucket the site is published to.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the key prefix objects are uploaded under.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region of the bucket. Falls back to the SDK's
	// environment resolution when empty.
	Region string `json:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Port:   DefaultPort,
		Host:   DefaultHost,
		Public: DefaultPublic,
		Build: BuildConfig{
			Output: DefaultOutput,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for viaduct.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Defaults are
// applied and the result is validated before it is returned.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("No viaduct.json found in " + filepath.Dir(path)).
				WithSuggestion("Create viaduct.json with at least a \"name\" field")
		}
		return nil, errors.New("C002").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse viaduct.json: " + err.Error()).
			WithSuggestion("Check that viaduct.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Public == "" {
		c.Public = DefaultPublic
	}
	if c.Build.Output == "" {
		c.Build.Output = DefaultOutput
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.New("C003").
			WithDetailf("Port %d is out of range, must be between 1 and 65535", c.Port)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("C003").
				WithDetail("baseURL must be an absolute URL like https://example.com").
				WithSuggestion("Set baseURL to the full origin the site is served from")
		}
	}
	return nil
}

// Address returns the host:port address for the dev server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the full URL for the dev server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// OutputPath returns the absolute path to the build output directory.
func (c *Config) OutputPath() string {
	return c.resolve(c.Build.Output)
}

// PublicPath returns the absolute path to the static assets directory.
func (c *Config) PublicPath() string {
	return c.resolve(c.Public)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing viaduct.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C001").
				WithDetail("No viaduct.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the nearest project root at or
// above the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

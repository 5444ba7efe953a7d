// Package config loads the dashboard settings from an optional YAML file and the
// NEO4J_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/lib"
	"github.com/psidex/arat/internal/store"
)

// Environment variables holding the database credentials.
const (
	EnvURI      = "NEO4J_URI"
	EnvUser     = "NEO4J_USER"
	EnvPassword = "NEO4J_PASSWORD"
)

const (
	DefaultListen         = "127.0.0.1:8501"
	DefaultLogLevel       = "info"
	DefaultQueryTimeout   = 30 * time.Second
	DefaultHealthInterval = 15 * time.Second
)

type Config struct {
	Listen string `yaml:"listen"`
	// GRPCListen is where the gRPC health service listens, empty disables it.
	GRPCListen     string       `yaml:"grpcListen"`
	LogLevel       string       `yaml:"logLevel"`
	HealthInterval lib.Duration `yaml:"healthInterval"`

	Neo4j  Neo4jConfig       `yaml:"neo4j"`
	Limits enrollment.Bounds `yaml:"limits"`
}

// Neo4jConfig is the database section. Credentials are normally left out of the
// file and supplied through the environment.
type Neo4jConfig struct {
	URI          string       `yaml:"uri"`
	User         string       `yaml:"user"`
	Password     string       `yaml:"password"`
	Database     string       `yaml:"database"`
	QueryTimeout lib.Duration `yaml:"queryTimeout"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path, an empty path gives the defaults. Environment
// overrides are not applied here, see ApplyEnv.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Limits.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.HealthInterval.Duration == 0 {
		c.HealthInterval = lib.DurationFrom(DefaultHealthInterval)
	}
	if c.Neo4j.QueryTimeout.Duration == 0 {
		c.Neo4j.QueryTimeout = lib.DurationFrom(DefaultQueryTimeout)
	}

	defaults := enrollment.DefaultBounds()
	if c.Limits.Min == 0 {
		c.Limits.Min = defaults.Min
	}
	if c.Limits.Max == 0 {
		c.Limits.Max = defaults.Max
	}
	if c.Limits.Default == 0 {
		c.Limits.Default = defaults.Default
	}
}

// ApplyEnv overrides the credentials with whatever lookup finds set. Pass
// os.LookupEnv outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURI); ok {
		c.Neo4j.URI = v
	}
	if v, ok := lookup(EnvUser); ok {
		c.Neo4j.User = v
	}
	if v, ok := lookup(EnvPassword); ok {
		c.Neo4j.Password = v
	}
}

// StoreConfig is the part of the config the database client needs.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		URI:          c.Neo4j.URI,
		Username:     c.Neo4j.User,
		Password:     c.Neo4j.Password,
		Database:     c.Neo4j.Database,
		QueryTimeout: c.Neo4j.QueryTimeout.Duration,
	}
}

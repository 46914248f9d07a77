package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Yamashou/gqlblock/registry"
)

// Config represents the config file.
type Config struct {
	Log       LogConfig   `yaml:"log,omitempty"`
	Instances []*Instance `yaml:"instances"`
}

type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// Instance binds an id to a schema source: a remote endpoint introspected
// over HTTP or a local SDL file.
type Instance struct {
	ID       string          `yaml:"id"`
	Endpoint *EndPointConfig `yaml:"endpoint,omitempty"`
	Schema   string          `yaml:"schema,omitempty"`
}

// EndPointConfig are the allowed options for the 'endpoint' config.
type EndPointConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LoadConfig loads and validates the config file. Environment variables are
// expanded and schema paths are resolved against the config directory.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	// validation
	if len(c.Instances) == 0 {
		return nil, errors.New("no 'instances' specified")
	}

	if _, err := c.Log.level(); err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	seen := make(map[string]bool, len(c.Instances))
	for i, instance := range c.Instances {
		if instance == nil || instance.ID == "" {
			return nil, fmt.Errorf("instances[%d]: 'id' is required", i)
		}
		if seen[instance.ID] {
			return nil, fmt.Errorf("instance %q: duplicated id", instance.ID)
		}
		seen[instance.ID] = true

		if instance.Schema != "" && instance.Endpoint != nil {
			return nil, fmt.Errorf("instance %q: 'schema' and 'endpoint' both specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)", instance.ID)
		}

		if instance.Schema == "" && instance.Endpoint == nil {
			return nil, fmt.Errorf("instance %q: neither 'schema' nor 'endpoint' specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)", instance.ID)
		}

		if instance.Endpoint != nil && instance.Endpoint.URL == "" {
			return nil, fmt.Errorf("instance %q: 'endpoint.url' is required", instance.ID)
		}

		if instance.Schema != "" && !filepath.IsAbs(instance.Schema) {
			instance.Schema = filepath.Join(filepath.Dir(configFilename), instance.Schema)
		}
	}

	return &c, nil
}

// Instance returns the instance with the given id.
func (c *Config) Instance(id string) (*Instance, bool) {
	for _, instance := range c.Instances {
		if instance.ID == id {
			return instance, true
		}
	}

	return nil, false
}

// EndpointURL is the registry key of the instance's schema.
func (i *Instance) EndpointURL() string {
	if i.Endpoint != nil {
		return i.Endpoint.URL
	}

	return registry.FileScheme + filepath.ToSlash(i.Schema)
}

// HeadersJSON encodes the endpoint headers as a JSON object, the form
// accepted by registry.Register.
func (i *Instance) HeadersJSON() (string, error) {
	if i.Endpoint == nil || len(i.Endpoint.Headers) == 0 {
		return "", nil
	}

	b, err := json.Marshal(i.Endpoint.Headers, json.Deterministic(true))
	if err != nil {
		return "", fmt.Errorf("encode headers of instance %q: %w", i.ID, err)
	}

	return string(b), nil
}

func (l LogConfig) level() (zapcore.Level, error) {
	if l.Level == "" {
		return zapcore.InfoLevel, nil
	}

	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid level %q: %w", l.Level, err)
	}

	return level, nil
}

// Logger builds the logger described by the 'log' section. Logs go to stderr.
func (l LogConfig) Logger() (*zap.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	if l.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(level)

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

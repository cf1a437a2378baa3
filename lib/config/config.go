// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when --config is
// not given.
const EnvironmentVariable = "WEAVEDUMP_CONFIG"

// Config is the dumper configuration.
type Config struct {
	// Gateway configures the Arweave gateway client.
	Gateway GatewayConfig `yaml:"gateway" json:"gateway"`

	// Retry configures waiting for chunks that have not propagated.
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output configures the output file.
	Output OutputConfig `yaml:"output" json:"output"`
}

// GatewayConfig configures the gateway client.
type GatewayConfig struct {
	// URL is the gateway base URL.
	// Default: https://arweave.net
	URL string `yaml:"url" json:"url"`

	// Timeout bounds each HTTP request.
	// Default: 30s
	Timeout string `yaml:"timeout" json:"timeout"`
}

// RetryConfig configures pending-chunk retries.
type RetryConfig struct {
	// PendingAttempts is the number of retries for a chunk the
	// gateway reports as pending. Zero fails on the first pending
	// response.
	// Default: 0
	PendingAttempts int `yaml:"pending_attempts" json:"pending_attempts"`

	// Backoff is the first wait, doubled after each retry.
	// Default: 2s
	Backoff string `yaml:"backoff" json:"backoff"`

	// MaxBackoff caps the wait.
	// Default: 30s
	MaxBackoff string `yaml:"max_backoff" json:"max_backoff"`
}

// OutputConfig configures the output file.
type OutputConfig struct {
	// Format is "json" or "cbor".
	// Default: json
	Format string `yaml:"format" json:"format"`

	// Compression is "none", "zstd", or "lz4".
	// Default: none
	Compression string `yaml:"compression" json:"compression"`

	// Recipients are age X25519 public keys (age1...). When set, the
	// output is encrypted to all of them.
	Recipients []string `yaml:"recipients" json:"recipients"`

	// OmitData replaces each payload with its size and BLAKE3 digest.
	// Default: false
	OmitData bool `yaml:"omit_data" json:"omit_data"`
}

// Default returns the default configuration. Files are loaded over
// it, so a file only needs the values it changes.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			URL:     "https://arweave.net",
			Timeout: "30s",
		},
		Retry: RetryConfig{
			PendingAttempts: 0,
			Backoff:         "2s",
			MaxBackoff:      "30s",
		},
		Output: OutputConfig{
			Format:      "json",
			Compression: "none",
		},
	}
}

// Load loads configuration from the file named by WEAVEDUMP_CONFIG.
// It fails if the variable is not set.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a weavedump config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// Resolve returns the configuration for a command invocation: the
// file at flagPath if given, else the file named by WEAVEDUMP_CONFIG
// if set, else the defaults. There is no search for a config file in
// well-known locations.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return LoadFile(flagPath)
	}
	if os.Getenv(EnvironmentVariable) != "" {
		return Load()
	}
	return Default(), nil
}

// LoadFile loads configuration from path over the defaults. Files
// ending in .json or .jsonc are parsed as JSON with comments; anything
// else as YAML. ${VAR} and ${VAR:-default} in the gateway URL and
// recipients are expanded from the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		return decoder.Decode(c)
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		err := decoder.Decode(c)
		if errors.Is(err, io.EOF) {
			// An empty file keeps the defaults.
			return nil
		}
		return err
	}
}

func (c *Config) expandVariables() {
	c.Gateway.URL = expandVars(c.Gateway.URL)
	for i, recipient := range c.Output.Recipients {
		c.Output.Recipients[i] = expandVars(recipient)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// GatewayTimeout returns the parsed gateway timeout. Call Validate
// first; an unparseable value returns zero.
func (c *Config) GatewayTimeout() time.Duration {
	duration, _ := time.ParseDuration(c.Gateway.Timeout)
	return duration
}

// RetryBackoff returns the parsed initial backoff.
func (c *Config) RetryBackoff() time.Duration {
	duration, _ := time.ParseDuration(c.Retry.Backoff)
	return duration
}

// RetryMaxBackoff returns the parsed maximum backoff.
func (c *Config) RetryMaxBackoff() time.Duration {
	duration, _ := time.ParseDuration(c.Retry.MaxBackoff)
	return duration
}

// Validate checks the configuration and reports every problem at
// once.
func (c *Config) Validate() error {
	var errs []error

	if c.Gateway.URL == "" {
		errs = append(errs, errors.New("gateway.url is required"))
	} else if parsed, err := url.Parse(c.Gateway.URL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("gateway.url must be an absolute http or https URL, got %q", c.Gateway.URL))
	}

	errs = append(errs, validateDuration("gateway.timeout", c.Gateway.Timeout))
	errs = append(errs, validateDuration("retry.backoff", c.Retry.Backoff))
	errs = append(errs, validateDuration("retry.max_backoff", c.Retry.MaxBackoff))
	if c.RetryBackoff() > 0 && c.RetryMaxBackoff() > 0 && c.RetryMaxBackoff() < c.RetryBackoff() {
		errs = append(errs, fmt.Errorf("retry.max_backoff (%s) is shorter than retry.backoff (%s)", c.Retry.MaxBackoff, c.Retry.Backoff))
	}
	if c.Retry.PendingAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry.pending_attempts must not be negative, got %d", c.Retry.PendingAttempts))
	}

	formats := []string{"json", "cbor"}
	if !slices.Contains(formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", formats))
	}
	compressions := []string{"none", "zstd", "lz4"}
	if !slices.Contains(compressions, c.Output.Compression) {
		errs = append(errs, fmt.Errorf("output.compression must be one of: %v", compressions))
	}
	for i, recipient := range c.Output.Recipients {
		if !strings.HasPrefix(recipient, "age1") {
			errs = append(errs, fmt.Errorf("output.recipients[%d] is not an age public key: %q", i, recipient))
		}
	}

	return errors.Join(errs...)
}

func validateDuration(field, value string) error {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if duration <= 0 {
		return fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return nil
}

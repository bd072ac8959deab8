// Package config loads the tool's configuration file. A config.json next
// to the working directory (or one level up) is the base; a
// config-dev.json in the same place overrides it during development and
// should be removed before deployment. Files are parsed as JSON5 so
// comments and trailing commas are allowed.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// Config holds the recognized configuration options.
type Config struct {
	// APIURL is the base URL of the API server,
	// e.g. https://customer.leading2lean.com/api/1.0/
	APIURL string `json:"apiurl"`
	// APIKey is the authorization key for the server.
	APIKey string `json:"apikey"`
	// Verbose echoes log entries to the terminal.
	Verbose bool `json:"verbose"`
	// LogDirectory and CSVDirectory default to log/ and csv/ beside the
	// working directory when empty.
	LogDirectory string `json:"logdirectory"`
	CSVDirectory string `json:"csvdirectory"`
	// ExportFormat selects the output sink: "csv" (default) or "xlsx".
	ExportFormat string `json:"exportformat"`
}

// Load reads the configuration from dir, falling back to dir's parent.
// Missing configuration is an error; there is no built-in default server.
func Load(dir string) (Config, error) {
	for _, d := range []string{dir, filepath.Join(dir, "..")} {
		cfg, found, err := read(d)
		if err != nil {
			return Config{}, err
		}
		if found {
			return cfg, nil
		}
	}
	return Config{}, fmt.Errorf("cannot find config.json in %s or its parent", dir)
}

// read loads config.json merged with config-dev.json overrides from one
// directory. found is false when neither file exists there.
func read(dir string) (cfg Config, found bool, err error) {
	base, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil && !os.IsNotExist(err) {
		return cfg, false, err
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &cfg); err != nil {
			return cfg, false, fmt.Errorf("parse config.json: %w", err)
		}
		found = true
	}

	dev, err := os.ReadFile(filepath.Join(dir, "config-dev.json"))
	if err != nil && !os.IsNotExist(err) {
		return cfg, false, err
	}
	if len(dev) > 0 {
		var override Config
		if err := json5.Unmarshal(dev, &override); err != nil {
			return cfg, false, fmt.Errorf("parse config-dev.json: %w", err)
		}
		if err := mergo.Merge(&cfg, override, mergo.WithOverride); err != nil {
			return cfg, false, err
		}
		found = true
	}

	return cfg, found, nil
}

// Package config holds the static deployment identity of a Base Receipt
// instance.
//
// The domain identity is compiled-in metadata, optionally overridden by a
// YAML file for non-production deployments. It is descriptive, not
// user-mutable: the state manager persists a copy so a later run can
// detect storage reused across mismatched deployments.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DomainConfig identifies the deployment instance.
//
// JSON tags define the persisted shape used for the domain binding check;
// YAML tags define the override file shape.
type DomainConfig struct {
	AppName     string `json:"appName" yaml:"app_name"`
	Domain      string `json:"domain" yaml:"domain"`
	Subdomain   string `json:"subdomain" yaml:"subdomain"`
	FullDomain  string `json:"fullDomain" yaml:"full_domain"`
	Description string `json:"description" yaml:"description"`
}

// Default returns the production Base Receipt identity.
func Default() DomainConfig {
	return DomainConfig{
		AppName:     "Base Receipt",
		Domain:      "base.pi",
		Subdomain:   "receipt",
		FullDomain:  "receipt.base.pi",
		Description: "Oversight and verification layer for Pi Network",
	}
}

// Load returns the domain identity, applying overrides from the YAML
// file at path when it exists. An empty path or a missing file yields
// the defaults; a malformed file is an error.
func Load(path string) (DomainConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return DomainConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DomainConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

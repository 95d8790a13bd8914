// Package toml reads deploy settings from netlify.toml.
package toml

import (
	"errors"
	"os"

	"github.com/fwojciec/artdir"
	"github.com/pelletier/go-toml/v2"
)

// NetlifyFile is the deploy config looked up in the project root.
const NetlifyFile = "netlify.toml"

// NetlifyConfig is the subset of netlify.toml the tools read.
type NetlifyConfig struct {
	Build struct {
		Publish string `toml:"publish"`
		Command string `toml:"command"`
	} `toml:"build"`
}

// LoadNetlify parses netlify.toml at path. A missing file returns ENOTFOUND.
func LoadNetlify(path string) (*NetlifyConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, artdir.Errorf(artdir.ENOTFOUND, "%s not found", path)
	} else if err != nil {
		return nil, err
	}

	var cfg NetlifyConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, artdir.Errorf(artdir.EINVALID, "invalid %s: %v", path, err)
	}
	return &cfg, nil
}

// PublishDir returns the build publish directory declared in netlify.toml
// at path, or fallback when the file or setting is absent.
func PublishDir(path, fallback string) (string, error) {
	cfg, err := LoadNetlify(path)
	if artdir.ErrorCode(err) == artdir.ENOTFOUND {
		return fallback, nil
	} else if err != nil {
		return "", err
	}
	if cfg.Build.Publish == "" {
		return fallback, nil
	}
	return cfg.Build.Publish, nil
}

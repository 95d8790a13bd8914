// Package yaml loads the artdir.yaml configuration file.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/artdir"
	"gopkg.in/yaml.v3"
)

// Load reads the config at path and fills unset fields from
// artdir.DefaultConfig. A missing file yields the defaults. Unknown keys
// are rejected so typos do not pass silently.
func Load(path string) (*artdir.Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return artdir.DefaultConfig(), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes config data and applies defaults.
func Parse(data []byte) (*artdir.Config, error) {
	cfg := &artdir.Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, artdir.Errorf(artdir.EINVALID, "invalid config: %v", err)
	}

	cfg.Merge(artdir.DefaultConfig())
	return cfg, nil
}

// Marshal encodes cfg as YAML, e.g. to print the effective configuration.
func Marshal(cfg *artdir.Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package main

import (
	"github.com/fwojciec/artdir/yaml"
)

// Run executes the config command.
func (c *ConfigCmd) Run(deps *Dependencies) error {
	data, err := yaml.Marshal(deps.Config)
	if err != nil {
		return err
	}
	_, err = deps.Stdout.Write(data)
	return err
}

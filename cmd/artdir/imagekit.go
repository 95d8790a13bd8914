package main

import (
	"fmt"

	"github.com/fwojciec/artdir"
)

// Run executes the imagekit sync command.
func (c *ImageKitSyncCmd) Run(deps *Dependencies) error {
	if deps.ImageKit == nil {
		return fmt.Errorf("IMAGEKIT_PRIVATE_KEY not set")
	}

	result, err := deps.ImageKit.Sync(deps.Ctx, deps.Inventory, c.Folder)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Listed %d files in %s: stored %d, removed %d stale records\n",
		result.Listed, c.Folder, result.Stored, result.Removed)
	return nil
}

// Run executes the imagekit auth command.
func (c *ImageKitAuthCmd) Run(deps *Dependencies) error {
	if deps.ImageKit == nil {
		return fmt.Errorf("IMAGEKIT_PRIVATE_KEY not set")
	}

	params := deps.ImageKit.AuthParams(c.Token, c.Expire)
	data, err := artdir.MarshalIndent(params)
	if err != nil {
		return err
	}
	_, err = deps.Stdout.Write(data)
	return err
}

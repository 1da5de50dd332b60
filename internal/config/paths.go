// Package config manages stackplan configuration and filesystem paths.
//
// The default root is ~/.stackplan/ holding the optional config.yaml. Values
// can also come from STACKPLAN_* environment variables and, for a few keys,
// from the repository's git config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the filesystem paths used by stackplan.
type Paths struct {
	// Root is the base directory for stackplan data (default: ~/.stackplan)
	Root string

	// Config is the path to the global config file
	Config string
}

// DefaultPaths returns the default paths for stackplan.
// Paths can be overridden with environment variables:
// - STACKPLAN_ROOT: Override the root directory
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("STACKPLAN_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".stackplan")
	}

	return &Paths{
		Root:   root,
		Config: filepath.Join(root, "config.yaml"),
	}, nil
}

// File: discovery.go
// Title: Configuration File Discovery Implementation
// Description: Searches well-known directories for a configuration file so
//              the CLI works without an explicit --config flag.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation of file discovery
// - 2026-10-18 v0.2.0: User config directory, optional discovery

package config

import (
	"os"
	"path/filepath"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
)

// DiscoveryOptions defines options for automatic configuration file discovery
type DiscoveryOptions struct {
	Paths      []string // Directories to search, in order
	Filenames  []string // Base filenames without extension
	Extensions []string // Extensions to try, in order
}

// DefaultDiscoveryOptions returns the search locations for an application
// named app: the working directory, ./config and the user config directory.
func DefaultDiscoveryOptions(app string) DiscoveryOptions {
	paths := []string{".", "./config"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, app))
	}
	return DiscoveryOptions{
		Paths:      paths,
		Filenames:  []string{app},
		Extensions: []string{".toml", ".yaml", ".yml"},
	}
}

// FindConfigFile returns the first existing candidate file. The error has
// code NOT_FOUND when nothing matched.
func FindConfigFile(options DiscoveryOptions) (string, error) {
	candidates := ListPossibleConfigFiles(options)
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", mdwerror.New("configuration file not found").
		WithCode(mdwerror.CodeNotFound).
		WithOperation("config.FindConfigFile").
		WithDetail("searchPaths", candidates)
}

// ListPossibleConfigFiles returns every candidate path in search order
func ListPossibleConfigFiles(options DiscoveryOptions) []string {
	var paths []string
	for _, dir := range options.Paths {
		for _, name := range options.Filenames {
			for _, ext := range options.Extensions {
				paths = append(paths, filepath.Join(dir, name+ext))
			}
		}
	}
	return paths
}

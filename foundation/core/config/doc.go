// Package config loads TOML and YAML configuration files.
//
// Package: config
// Title: funlang Configuration Loading
// Description: Format detection, dotted-key access with environment
//              overrides, decoding into typed structs and discovery of
//              configuration files in well-known locations.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with TOML/YAML support
// - 2026-10-18 v0.2.0: Struct decoding, dropped file watching and rule validation
//
// Usage:
//
//	cfg, err := config.Load("funlang.toml")
//	depth := cfg.GetInt("interpreter.max_call_depth", 10000)
//
//	var typed AppConfig
//	err = config.DecodeFile("funlang.yaml", &typed)
package config

// Package config loads, validates, and defaults the TOML configuration that
// drives lingclip. Paths are expanded and made absolute during load so the
// rest of the codebase never deals with ~ or relative locations.
package config

// Package config loads, normalizes, and validates scorelib configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and applies SCORELIB_* environment overrides.
// The Config type centralizes every knob the CLI needs: Drive credentials,
// listing cache and catalog locations, the naming convention, and the
// ordered section registry.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config

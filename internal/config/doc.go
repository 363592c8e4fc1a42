// Package config loads, normalizes, and validates meetbot configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// bot needs: output and log directories, the WebDriver endpoint, capture
// device settings, and session timing policy.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

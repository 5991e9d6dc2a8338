// Package config loads, normalizes, and validates scanpi configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PAPERLESS_API_KEY. The Config type centralizes every knob the CLI needs:
// the SSH connection string, batch directory policy, scanner retry bounds,
// and the optional Paperless upload credentials.
//
// Always obtain settings through this package so downstream code receives
// sanitized values and clear validation errors before any remote action runs.
package config

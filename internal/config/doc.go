// Package config loads, normalizes, and validates auditionsync configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// COMMERCE_API_KEY and GOOGLE_APPLICATION_CREDENTIALS. The audition section is
// frozen into an immutable Rules value that pipeline stages receive through
// their constructors; nothing reads configuration from package state.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config

// Package config loads the server settings from environment variables, an
// optional .env file and an optional config.yaml, and validates them before
// any component starts.
package config

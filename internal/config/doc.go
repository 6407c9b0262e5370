// Package config handles configuration loading, parsing, and validation
// from environment variables and optional YAML files. It provides type-safe
// access to scheduler, optimizer, and task settings while keeping
// configuration details separate from the scheduling logic itself.
package config

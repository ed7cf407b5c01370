package config

import "errors"

var (
	// ErrConfigNotFound indicates the gateway's YAML configuration file was
	// not found. A missing file is not fatal: Load falls back to built-in
	// defaults.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidYAML indicates YAML parsing failed.
	ErrInvalidYAML = errors.New("invalid YAML syntax")

	// ErrValidationFailed indicates configuration validation failed.
	ErrValidationFailed = errors.New("configuration validation failed")
)

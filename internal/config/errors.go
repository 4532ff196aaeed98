// Package config provides configuration types and defaults for icecale.
package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidScale indicates an upscale factor the upscaler does not support.
	ErrInvalidScale = errors.New("scale factor out of range")

	// ErrInvalidResolutionCap indicates a non-positive or odd maximum dimension.
	ErrInvalidResolutionCap = errors.New("resolution cap invalid")

	// ErrInvalidTimeout indicates a negative stage timeout.
	ErrInvalidTimeout = errors.New("stage timeout invalid")

	// ErrInvalidGPU indicates a negative GPU device id.
	ErrInvalidGPU = errors.New("GPU device id invalid")

	// ErrMissingModel indicates an empty upscaler model name.
	ErrMissingModel = errors.New("upscaler model missing")

	// ErrInvalidProgressFormat indicates an unknown progress output format.
	ErrInvalidProgressFormat = errors.New("progress format invalid")

	// ErrInvalidEnv indicates an environment override that could not be parsed.
	ErrInvalidEnv = errors.New("invalid environment override")
)

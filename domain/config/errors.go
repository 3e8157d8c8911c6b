package config

import "errors"

var (
	// Loading.
	ErrConfigNotFound    = errors.New("config: file not found")
	ErrInvalidFormat     = errors.New("config: malformed document")
	ErrUnsupportedFormat = errors.New("config: unsupported format")

	// ErrValidationFailed wraps the ValidationErrors of a rejected SolverConfig.
	ErrValidationFailed = errors.New("config: validation failed")

	// ErrEnvExpansionFailed and ErrMissingEnvVar report ${VAR} references that
	// could not be resolved.
	ErrEnvExpansionFailed = errors.New("config: environment expansion failed")
	ErrMissingEnvVar      = errors.New("config: environment variable not set")

	// ErrBuildFailed is returned when a valid SolverConfig cannot be turned into
	// a provider, stores and telemetry.
	ErrBuildFailed = errors.New("config: cannot build solver components")
)

package api

import (
	domainconfig "github.com/felixgeelhaar/maker-go/domain/config"
	infraconfig "github.com/felixgeelhaar/maker-go/infrastructure/config"
)

type (
	// SolverConfig is the file-level configuration of a solve.
	SolverConfig     = domainconfig.SolverConfig
	ConfigDuration   = domainconfig.Duration
	ValidationError  = domainconfig.ValidationError
	ValidationErrors = domainconfig.ValidationErrors

	// ConfigLoader reads layered YAML or JSON files onto the defaults.
	ConfigLoader       = infraconfig.Loader
	ConfigLoaderOption = infraconfig.LoaderOption
	// ConfigBuilder turns a SolverConfig into a provider, stores and telemetry.
	ConfigBuilder     = infraconfig.Builder
	ConfigBuildResult = infraconfig.BuildResult
	JSONSchema        = infraconfig.JSONSchema
)

const (
	ConfigFormatYAML = infraconfig.FormatYAML
	ConfigFormatJSON = infraconfig.FormatJSON
)

var (
	ErrConfigNotFound     = domainconfig.ErrConfigNotFound
	ErrInvalidFormat      = domainconfig.ErrInvalidFormat
	ErrUnsupportedFormat  = domainconfig.ErrUnsupportedFormat
	ErrValidationFailed   = domainconfig.ErrValidationFailed
	ErrEnvExpansionFailed = domainconfig.ErrEnvExpansionFailed
	ErrMissingEnvVar      = domainconfig.ErrMissingEnvVar
	ErrBuildFailed        = domainconfig.ErrBuildFailed
)

// Loader options.
var (
	ConfigWithEnvExpansion = infraconfig.WithEnvExpansion
	ConfigWithStrictEnv    = infraconfig.WithStrictEnv
	ConfigWithValidation   = infraconfig.WithValidation
	ConfigWithKnownFields  = infraconfig.WithKnownFields
)

// NewConfigLoader returns a loader that expands the environment and validates.
func NewConfigLoader() *ConfigLoader { return infraconfig.NewLoader() }

func NewConfigLoaderWithOptions(opts ...ConfigLoaderOption) *ConfigLoader {
	return infraconfig.NewLoaderWithOptions(opts...)
}

func NewConfigBuilder(config *SolverConfig) *ConfigBuilder { return infraconfig.NewBuilder(config) }

func NewConfigValidator() *domainconfig.Validator { return domainconfig.NewValidator() }

// DefaultSolverConfig returns the configuration used when no file is given:
// gpt-4.1, three disks, k=3 and red-flagging on.
func DefaultSolverConfig() *SolverConfig { return infraconfig.DefaultConfig() }

// OpenCache opens the greedy-step cache described by a cache section. The
// closer is nil for backends without resources.
var OpenCache = infraconfig.OpenCache

func GenerateConfigSchema() *JSONSchema { return infraconfig.GenerateSchema() }

func ConfigSchemaJSON() (string, error) { return infraconfig.SchemaJSON() }

// ExpandEnv expands ${VAR}, ${VAR:-default} and ${VAR:?error} references.
// Unset variables without a default expand to the empty string.
func ExpandEnv(input string) string { return infraconfig.ExpandEnv(input) }

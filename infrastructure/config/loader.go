// Package config loads solver configuration files and turns them into
// providers, stores and telemetry.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/maker-go/domain/config"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnsupportedFormat, ext)
	}
}

// Loader decodes documents on top of config.Default, so a file only needs the
// settings it changes.
type Loader struct {
	ExpandEnv bool
	StrictEnv bool
	Validate  bool
	// KnownFields rejects keys that do not map to a SolverConfig field.
	KnownFields bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnvExpansion toggles ${VAR} expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) { l.ExpandEnv = enabled }
}

// WithStrictEnv fails on references to unset variables that carry no default.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) { l.StrictEnv = enabled }
}

// WithValidation toggles validation of the final configuration.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) { l.Validate = enabled }
}

// WithKnownFields toggles rejection of unknown keys.
func WithKnownFields(enabled bool) LoaderOption {
	return func(l *Loader) { l.KnownFields = enabled }
}

// NewLoader expands the environment and validates.
func NewLoader() *Loader {
	return &Loader{ExpandEnv: true, Validate: true}
}

// NewLoaderWithOptions applies opts to NewLoader.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads a single file.
func (l *Loader) LoadFile(path string) (*config.SolverConfig, error) {
	return l.LoadFiles(path)
}

// LoadFiles layers the given files in order: later files override the
// settings they name. The result is validated once, after the last layer.
func (l *Loader) LoadFiles(paths ...string) (*config.SolverConfig, error) {
	cfg := config.Default()
	for _, path := range paths {
		data, format, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := l.decode(data, format, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return l.finish(&cfg)
}

// Load decodes one document from r.
func (l *Loader) Load(r io.Reader, format Format) (*config.SolverConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := config.Default()
	if err := l.decode(data, format, &cfg); err != nil {
		return nil, err
	}
	return l.finish(&cfg)
}

// LoadString decodes content.
func (l *Loader) LoadString(content string, format Format) (*config.SolverConfig, error) {
	return l.Load(strings.NewReader(content), format)
}

// LoadBytes decodes data.
func (l *Loader) LoadBytes(data []byte, format Format) (*config.SolverConfig, error) {
	return l.Load(bytes.NewReader(data), format)
}

func readFile(path string) ([]byte, Format, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, "", fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
	case err != nil:
		return nil, "", fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return nil, "", fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read config: %w", err)
	}
	return data, format, nil
}

func (l *Loader) decode(data []byte, format Format, cfg *config.SolverConfig) error {
	if l.ExpandEnv {
		expanded, err := newEnvExpander(l.StrictEnv).Expand(string(data))
		if err != nil {
			return err
		}
		data = []byte(expanded)
	}

	var err error
	switch format {
	case FormatYAML:
		// io.EOF means an empty document; the defaults stand.
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(l.KnownFields)
		if err = dec.Decode(cfg); errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if l.KnownFields {
			dec.DisallowUnknownFields()
		}
		err = dec.Decode(cfg)
	default:
		return fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
	}
	return nil
}

func (l *Loader) finish(cfg *config.SolverConfig) (*config.SolverConfig, error) {
	if l.Validate {
		if errs := config.NewValidator().Validate(cfg); errs.HasErrors() {
			return nil, fmt.Errorf("%w: %v", config.ErrValidationFailed, errs)
		}
	}
	return cfg, nil
}

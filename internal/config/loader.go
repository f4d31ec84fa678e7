// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Load .env files via godotenv (the default ./.env is optional,
//     explicitly named files are required).
//  2. Use envconfig to process struct tags and populate the Config struct.
//  3. Populate BuildInfo from linker-injected variables.
//  4. Validate the struct using go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig to aid debugging.
// It wraps a ConfigErrorType and an underlying error message.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// defaultDotenv is loaded when no explicit files are given.
const defaultDotenv = ".env"

// dotenvLoader matches the signature of godotenv.Load and allows injection
// for testing.
type dotenvLoader func(filenames ...string) error

// envProcessor matches the signature of envconfig.Process.
type envProcessor func(prefix string, spec interface{}) error

// loaderDeps holds the injectable dependencies for the loader, enabling
// testing without touching the working directory.
type loaderDeps struct {
	loadDotenv dotenvLoader
	process    envProcessor
}

// defaultDeps returns the standard dependencies.
func defaultDeps() loaderDeps {
	return loaderDeps{
		loadDotenv: godotenv.Load,
		process:    envconfig.Process,
	}
}

// LoadConfig loads and validates the configuration.
//
// envFiles names dotenv files to load; each must exist. With no files, a
// ./.env is loaded if present. Dotenv values never override variables that
// are already set in the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	return loadConfigWithDeps(defaultDeps(), envFiles...)
}

// loadConfigWithDeps is the internal implementation of LoadConfig that accepts
// injectable dependencies for testing.
func loadConfigWithDeps(deps loaderDeps, envFiles ...string) (*Config, error) {
	// Step 1: Load .env files.
	if len(envFiles) == 0 {
		if err := deps.loadDotenv(defaultDotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigError{
				Type:    ErrDotenv,
				Message: "failed to parse " + defaultDotenv,
				Err:     err,
			}
		}
	} else if err := deps.loadDotenv(envFiles...); err != nil {
		return nil, &ConfigError{
			Type:    ErrDotenv,
			Message: "failed to load env files",
			Err:     err,
		}
	}

	// Step 2: Process envconfig tags to populate the Config struct.
	// The empty prefix "" means envconfig will use the exact tag values
	// (e.g., envconfig:"APP_ENV" reads APP_ENV directly).
	var cfg Config
	if err := deps.process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	// Step 3: Populate build metadata from linker-injected variables.
	cfg.Build = NewBuildInfo()

	// Step 4: Validate the populated struct.
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs the struct validation rules against cfg. It is exported so
// that flag overrides applied after loading can be re-checked.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	return nil
}

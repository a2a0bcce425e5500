// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC timezone so rendered timestamps are stable.
//  2. Load .env via godotenv (non-fatal if absent; never overrides the OS env).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Populate BuildInfo from linker-injected variables.
//  5. Validate the struct using go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is a diagnostic error type returned by LoadConfig.
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

// LoadConfig loads and validates the relay configuration from the process
// environment and an optional .env file in the working directory.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return process()
}

// LoadConfigFromFiles is like LoadConfig but reads the given dotenv files,
// which must exist. Earlier files take precedence, and the OS environment
// takes precedence over all of them.
func LoadConfigFromFiles(files ...string) (*Config, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			msg := "failed to read dotenv file"
			if errors.Is(err, fs.ErrNotExist) {
				msg = "dotenv file not found"
			}
			return nil, &ConfigError{Type: ErrDotenv, Message: msg, Err: err}
		}
	}
	return process()
}

func process() (*Config, error) {
	time.Local = time.UTC

	// The empty prefix means envconfig uses the exact tag values.
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/gpterm/internal/completion"
	"github.com/jeranaias/gpterm/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates missing or rejected credentials
	ExitAuthError = 4
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports bad command-line arguments.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// NewUsageError creates a UsageError.
func NewUsageError(reason string) error {
	return &UsageError{Reason: reason}
}

// ConfigError wraps a failure to load or validate configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err in the standard format.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[Error]"), err.Error())

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) && len(verrs) > 1 {
		for _, v := range verrs {
			fmt.Fprintf(w, "  %s %s\n", DimStyle.Render("-"), v.Error())
		}
	}
}

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	if errors.Is(err, completion.ErrMissingAPIKey) {
		return ExitAuthError
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		var verrs config.ValidateErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				if v.Field == "credentials.api_key" {
					return ExitAuthError
				}
			}
		}
		return ExitConfigError
	}

	return ExitGeneralError
}

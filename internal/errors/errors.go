// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the irismcp CLI.
//
// UserError carries what went wrong, why, and how to fix it, plus the exit
// code the process should use. Startup failures (bad configuration, an
// unreachable IRIS server, rejected credentials) are reported this way;
// failures inside a tool call are returned to the host as text instead.
//
// # Usage Example
//
//	err := errors.NewNetworkError(
//	    "Cannot reach IRIS at http://localhost:52773",
//	    "dial tcp 127.0.0.1:52773: connect: connection refused",
//	    "Check IRIS_HOST and IRIS_PORT, and that the IRIS web server is running",
//	    underlyingErr,
//	)
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Error: Cannot reach IRIS at http://localhost:52773
//	// Cause: dial tcp 127.0.0.1:52773: connect: connection refused
//	// Fix:   Check IRIS_HOST and IRIS_PORT, and that the IRIS web server is running
//
// # Exit Codes
//
//   - ExitSuccess (0): Successful execution
//   - ExitConfig (1): Configuration errors (missing/invalid config)
//   - ExitRemote (2): The server answered with an unexpected error
//   - ExitNetwork (3): The server could not be reached
//   - ExitInput (4): Invalid user input (bad arguments, rejected SQL)
//   - ExitPermission (5): Credentials rejected (HTTP 401/403)
//   - ExitNotFound (6): Document or resource not found
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing/invalid config files).
	ExitConfig = 1

	// ExitRemote indicates the server responded with an error other than
	// an authentication failure.
	ExitRemote = 2

	// ExitNetwork indicates the server could not be reached (refused, timeout, DNS).
	ExitNetwork = 3

	// ExitInput indicates invalid user input (bad arguments, validation errors).
	ExitInput = 4

	// ExitPermission indicates the server rejected the credentials.
	ExitPermission = 5

	// ExitNotFound indicates a requested document or resource does not exist.
	ExitNotFound = 6

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
//   - Message: What went wrong
//   - Cause: Why it happened
//   - Fix: How to fix it
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int

	// Err is the underlying error, if any. It is exposed through Unwrap.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: code,
		Err:      err,
	}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load irismcp configuration",
//	    "iris.port must be between 1 and 65535",
//	    "Edit .irismcp/config.yaml or set IRIS_PORT",
//	    nil,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewRemoteError creates an error with exit code ExitRemote for failures
// reported by the server itself (5xx responses, malformed bodies).
func NewRemoteError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitRemote, msg, cause, fix, err)
}

// NewNetworkError creates a network error with exit code ExitNetwork.
//
// Use this when no HTTP response was received at all.
func NewNetworkError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNetwork, msg, cause, fix, err)
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors do not wrap an underlying error.
//
// Example:
//
//	return NewInputError(
//	    "Query rejected",
//	    "only read-only statements (SELECT or WITH) are allowed",
//	    "Rewrite the statement as a SELECT",
//	)
func NewInputError(msg, cause, fix string) *UserError {
	return newUserError(ExitInput, msg, cause, fix, nil)
}

// NewAuthError creates an authentication error with exit code ExitPermission.
//
// Example:
//
//	return NewAuthError(
//	    "IRIS rejected the credentials",
//	    "HTTP 401 Unauthorized from http://localhost:52773/api/atelier/",
//	    "Check IRIS_USERNAME and IRIS_PASSWORD",
//	    err,
//	)
func NewAuthError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitPermission, msg, cause, fix, err)
}

// NewNotFoundError creates a not found error with exit code ExitNotFound.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, nil)
}

// NewInternalError creates an internal error with exit code ExitInternal.
// Internal errors indicate bugs and should be reported.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// Error is red and bold, Cause yellow and Fix green. Colors are disabled by
// noColor or the NO_COLOR environment variable. Empty Cause or Fix fields
// are omitted.
//
// Format temporarily modifies the global color.NoColor state and restores it
// before returning.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format for --json output.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with the appropriate code.
//
// A UserError is printed with Format, or as JSON when jsonOutput is set, and
// exits with its ExitCode. Any other error exits with ExitInternal.
//
// This function never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// We are about to exit; an encode failure still exits with the right code.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}

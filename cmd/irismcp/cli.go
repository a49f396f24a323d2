// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/irismcp/internal/bootstrap"
	"github.com/kraklabs/irismcp/internal/errors"
	"github.com/kraklabs/irismcp/pkg/tools"
)

// cliLogger is quieter than the server logger: warnings only unless --debug.
func cliLogger(cfg *Config, globals GlobalFlags) *slog.Logger {
	if globals.Debug {
		return newLogger(os.Stderr, cfg, true)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// connect builds a client for a one-shot command. The startup check is
// skipped: the command's own request reports failures.
func connect(ctx context.Context, cfg *Config, globals GlobalFlags, logger *slog.Logger) *bootstrap.Session {
	session, err := bootstrap.Connect(ctx, bootstrap.Options{
		Client:    cfg.ClientConfig(logger),
		SkipCheck: true,
		Logger:    logger,
	})
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}
	return session
}

// remoteError turns a failed Atelier call into a UserError whose exit code
// matches the failure class.
func remoteError(err error, target, namespace string) error {
	msg := tools.DescribeError(err, target, namespace)
	switch tools.Decide(err, tools.MaxAttempts) {
	case tools.OutcomeAbortConnectivity:
		return errors.NewNetworkError(
			fmt.Sprintf("Cannot reach IRIS at %s", target),
			err.Error(),
			"Check IRIS_HOST, IRIS_PORT and IRIS_SCHEME (or IRIS_BASE_URL)",
			err,
		)
	case tools.OutcomeAbortAuth:
		return errors.NewAuthError(
			fmt.Sprintf("IRIS at %s rejected the request", target),
			err.Error(),
			"Check IRIS_USERNAME and IRIS_PASSWORD",
			err,
		)
	case tools.OutcomeNextCandidate:
		return errors.NewNotFoundError(msg, err.Error(), "Check the name and namespace")
	}
	return errors.NewRemoteError("IRIS request failed", msg, "Run with --debug for request details", err)
}

// printToolResult prints a tool result to stdout, or to stderr and exits
// with ExitRemote when the result is an error.
func printToolResult(res *tools.ToolResult) {
	if res.IsError {
		fmt.Fprintln(os.Stderr, res.Text)
		os.Exit(errors.ExitRemote)
	}
	fmt.Println(res.Text)
}

// parseParam reads a --param value as a JSON scalar when it is one
// (42, 1.5, true, null, "quoted") and as a plain string otherwise.
func parseParam(s string) any {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return s
	}
	switch v.(type) {
	case map[string]any, []any:
		return s
	}
	return v
}

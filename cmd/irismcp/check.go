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
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irismcp/internal/bootstrap"
	"github.com/kraklabs/irismcp/internal/errors"
	"github.com/kraklabs/irismcp/internal/output"
	"github.com/kraklabs/irismcp/internal/ui"
	"github.com/kraklabs/irismcp/pkg/tools"
)

// CheckResult is the outcome of 'irismcp check', also used for JSON output.
type CheckResult struct {
	Target             string    `json:"target"`
	Namespace          string    `json:"namespace"`
	Version            string    `json:"version,omitempty"`
	Namespaces         []string  `json:"namespaces,omitempty"`
	NamespaceAvailable bool      `json:"namespace_available"`
	SQLAvailable       bool      `json:"sql_available"`
	Warning            string    `json:"warning,omitempty"`
	SQLError           string    `json:"sql_error,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// runCheck executes the 'check' CLI command: the same startup check the
// server performs, plus a trivial query in the configured namespace.
//
// Flags:
//   - --json: Output results as JSON (default: false)
//   - --timeout: Overall command timeout (default: 30s)
//
// Exit codes follow internal/errors: 3 when IRIS is unreachable, 5 when the
// credentials are rejected.
func runCheck(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp check [options]

Description:
  Verify that IRIS is reachable, that the credentials are accepted and
  that SQL works in the configured namespace.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  irismcp check
  IRIS_NAMESPACE=%%SYS irismcp check --json
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(globals)
	logger := cliLogger(cfg, globals)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := checkConnection(ctx, cfg, logger)
	if err != nil {
		errors.FatalError(err, *jsonOutput || globals.JSON)
	}

	if *jsonOutput {
		if err := output.JSON(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(errors.ExitInternal)
		}
		return
	}
	printCheckResult(result)
	if !result.SQLAvailable {
		os.Exit(errors.ExitRemote)
	}
}

// checkConnection runs the startup check and a "SELECT 1" probe. Fatal
// startup failures are returned as UserErrors; everything else is recorded
// in the result.
func checkConnection(ctx context.Context, cfg *Config, logger *slog.Logger) (*CheckResult, error) {
	session, err := bootstrap.Connect(ctx, bootstrap.Options{
		Client: cfg.ClientConfig(logger),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	client := session.Client
	result := &CheckResult{
		Target:     client.Target(),
		Namespace:  client.DefaultNamespace(),
		Version:    session.Version,
		Namespaces: session.Namespaces,
		Timestamp:  time.Now().UTC(),
	}
	if session.Warning != nil {
		result.Warning = session.Warning.Error()
	}
	// Without a namespace list the server did not say; assume yes and let
	// the SQL probe decide.
	result.NamespaceAvailable = len(session.Namespaces) == 0 ||
		slices.ContainsFunc(session.Namespaces, func(ns string) bool {
			return strings.EqualFold(ns, result.Namespace)
		})

	if _, err := client.Query(ctx, result.Namespace, "SELECT 1 AS ok", nil); err != nil {
		result.SQLError = tools.DescribeError(err, result.Target, result.Namespace)
	} else {
		result.SQLAvailable = true
	}
	return result, nil
}

func printCheckResult(r *CheckResult) {
	ui.Header("IRIS Connection")
	ui.Field("Target:", ui.DimText(r.Target))
	ui.Field("Namespace:", r.Namespace)
	if r.Version != "" {
		ui.Field("Version:", r.Version)
	}
	fmt.Fprintln(ui.Out)

	ui.Check("Server", true, "reachable, credentials accepted")
	if r.Warning != "" {
		ui.Warningf("Server info: %s", r.Warning)
	}
	if len(r.Namespaces) > 0 {
		ui.Check("Namespace", r.NamespaceAvailable, fmt.Sprintf("%s (server has %s)", r.Namespace, strings.Join(r.Namespaces, ", ")))
	}
	if r.SQLAvailable {
		ui.Check("SQL", true, "SELECT 1 succeeded")
	} else {
		ui.Check("SQL", false, r.SQLError)
	}
}

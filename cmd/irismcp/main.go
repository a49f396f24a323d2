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

// Package main implements irismcp, an MCP server and CLI that gives LLM tool
// hosts read-only access to an InterSystems IRIS instance through the Atelier
// REST API.
//
// Usage:
//
//	irismcp                        Start the MCP server (JSON-RPC over stdio)
//	irismcp check                  Verify connectivity and credentials
//	irismcp query <sql> [--json]   Run a read-only SQL query
//	irismcp doc <name>             Print a class or routine
//	irismcp docs [--category CLS]  List documents in a namespace
//	irismcp init                   Create .irismcp/config.yaml
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/irismcp/internal/errors"
	"github.com/kraklabs/irismcp/internal/ui"
	"github.com/kraklabs/irismcp/pkg/tools"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// GlobalFlags holds flags accepted before the command name.
type GlobalFlags struct {
	ConfigPath string
	Debug      bool
	NoColor    bool
	JSON       bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		mcpMode     = flag.Bool("mcp", false, "Start as MCP server (same as 'irismcp serve')")
		globals     GlobalFlags
	)
	flag.StringVar(&globals.ConfigPath, "config", "", "Path to config file (default: ./.irismcp/config.yaml if present)")
	flag.BoolVar(&globals.Debug, "debug", false, "Enable debug logging on stderr")
	flag.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	flag.BoolVar(&globals.JSON, "json", false, "Print fatal errors as JSON")
	flag.CommandLine.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `irismcp - InterSystems IRIS for MCP tool hosts

irismcp exposes an IRIS instance to LLM tool hosts over the Model Context
Protocol. It talks to the Atelier REST API and only ever reads: documents
are fetched by name and SQL is limited to SELECT and WITH statements.

Usage:
  irismcp [global options] [command] [options]

Commands:
  serve         Start the MCP server on stdio (default)
  check         Verify connectivity and credentials
  query         Run a read-only SQL query
  doc           Print the source of a class or routine
  docs          List documents in a namespace
  init          Create .irismcp/config.yaml
  completion    Generate shell completion script (bash|zsh|fish)

Global Options:
  --config      Path to config file
  --debug       Enable debug logging on stderr
  --no-color    Disable colored output
  --json        Print fatal errors as JSON
  --mcp         Start as MCP server
  --version     Show version and exit

Examples:
  irismcp init                              Create configuration interactively
  irismcp check                             Check the connection
  irismcp query "SELECT TOP 5 Name FROM %%Dictionary.ClassDefinition"
  irismcp doc %%Library.String.cls          Print a class
  irismcp docs --category CLS --filter Ens  List classes
  irismcp --mcp                             Start as MCP server

Environment Variables:
  IRIS_BASE_URL              Full server URL (overrides scheme/host/port)
  IRIS_SCHEME, IRIS_HOST     Connection (default: http, localhost)
  IRIS_PORT                  Web server port (default: 52773)
  IRIS_PATH_PREFIX           Path prefix in front of /api/atelier
  IRIS_USERNAME              User (default: _SYSTEM)
  IRIS_PASSWORD              Password
  IRIS_NAMESPACE             Default namespace (default: USER)
  IRIS_TIMEOUT               Request timeout (default: 30s)
  IRIS_INSECURE_SKIP_VERIFY  Skip TLS verification (true|false)
  IRISMCP_METRICS_ADDR       Serve Prometheus metrics on this address
  IRISMCP_LOG_LEVEL          debug, info, warn or error

For detailed command help: irismcp <command> --help

`)
	}

	flag.Parse()
	ui.InitColors(globals.NoColor)
	tools.Version = version

	if *showVersion {
		fmt.Printf("irismcp version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if *mcpMode {
		runServe(flag.Args(), globals)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		runServe(nil, globals)
		return
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "serve":
		runServe(cmdArgs, globals)
	case "check":
		runCheck(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "doc":
		runDoc(cmdArgs, globals)
	case "docs":
		runDocs(cmdArgs, globals)
	case "init":
		runInit(cmdArgs)
	case "completion":
		runCompletion(cmdArgs)
	case "version":
		fmt.Printf("irismcp version %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

// loadConfig loads the configuration or exits with a ConfigError.
func loadConfig(globals GlobalFlags) *Config {
	cfg, err := LoadConfig(globals.ConfigPath)
	if err != nil {
		errors.FatalError(errors.NewConfigError(
			"Cannot load configuration",
			err.Error(),
			"Fix .irismcp/config.yaml (or --config) and the IRIS_* environment variables",
			err,
		), globals.JSON)
	}
	return cfg
}

// newLogger builds the process logger. It always writes to w, never stdout:
// in serve mode stdout carries the MCP stream.
func newLogger(w io.Writer, cfg *Config, debug bool) *slog.Logger {
	level, err := parseLogLevel(cfg.Server.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

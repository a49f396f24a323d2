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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"
)

// initFlags holds parsed flags for the init command.
type initFlags struct {
	force, nonInteractive bool
	baseURL, scheme, host string
	port                  int
	username, namespace   string
}

// runInit executes the 'init' CLI command, creating .irismcp/config.yaml in
// the current directory.
//
// Flags:
//   - --force: Overwrite existing configuration (default: false)
//   - -y: Non-interactive mode, use defaults and flags (default: false)
//   - --base-url: Full server URL, replaces scheme/host/port
//   - --scheme, --host, --port: Connection settings
//   - --username, --namespace: Login and default namespace
//
// The password is only asked for interactively; in non-interactive mode set
// IRIS_PASSWORD instead of storing it.
//
// Examples:
//
//	irismcp init                         Interactive setup
//	irismcp init -y --host iris.local    Use defaults with a different host
func runInit(args []string) {
	flags := parseInitFlags(args)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}

	configPath := ConfigPath(cwd)
	if _, err := os.Stat(configPath); err == nil && !flags.force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Use --force to overwrite.\n", configPath)
		os.Exit(1)
	}

	cfg := createInitConfig(flags)
	if !flags.nonInteractive {
		runInteractiveConfig(bufio.NewReader(os.Stdin), cfg)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	saveInitConfig(cwd, configPath, cfg)
	printNextSteps()
}

func parseInitFlags(args []string) initFlags {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var f initFlags
	fs.BoolVar(&f.force, "force", false, "Overwrite existing configuration")
	fs.BoolVarP(&f.nonInteractive, "yes", "y", false, "Non-interactive mode (use defaults)")
	fs.StringVar(&f.baseURL, "base-url", "", "Full server URL (e.g. https://iris.example.com/irisapp)")
	fs.StringVar(&f.scheme, "scheme", "", "http or https")
	fs.StringVar(&f.host, "host", "", "IRIS web server host")
	fs.IntVar(&f.port, "port", 0, "IRIS web server port")
	fs.StringVar(&f.username, "username", "", "IRIS user")
	fs.StringVar(&f.namespace, "namespace", "", "Default namespace")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp init [options]

Creates .irismcp/config.yaml configuration file.

Examples:
  irismcp init
  irismcp init -y --host iris.local --port 52773
  irismcp init -y --base-url https://iris.example.com/irisapp --namespace APP

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	return f
}

func createInitConfig(f initFlags) *Config {
	cfg := DefaultConfig()
	cfg.IRIS.Password = ""
	if f.baseURL != "" {
		cfg.IRIS.BaseURL = f.baseURL
	}
	if f.scheme != "" {
		cfg.IRIS.Scheme = strings.ToLower(f.scheme)
	}
	if f.host != "" {
		cfg.IRIS.Host = f.host
	}
	if f.port != 0 {
		cfg.IRIS.Port = f.port
	}
	if f.username != "" {
		cfg.IRIS.Username = f.username
	}
	if f.namespace != "" {
		cfg.IRIS.Namespace = f.namespace
	}
	return cfg
}

func runInteractiveConfig(reader *bufio.Reader, cfg *Config) {
	fmt.Println("irismcp Configuration")
	fmt.Println("=====================")
	fmt.Println()

	if cfg.IRIS.BaseURL == "" {
		cfg.IRIS.Scheme = strings.ToLower(prompt(reader, "Scheme (http or https)", cfg.IRIS.Scheme))
		cfg.IRIS.Host = prompt(reader, "Host", cfg.IRIS.Host)
		portStr := prompt(reader, "Port", strconv.Itoa(cfg.IRIS.Port))
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.IRIS.Port = port
		} else {
			fmt.Printf("Ignoring invalid port %q, keeping %d\n", portStr, cfg.IRIS.Port)
		}
	}
	cfg.IRIS.Username = prompt(reader, "Username", cfg.IRIS.Username)

	fmt.Println()
	fmt.Println("Leave the password empty to supply it through IRIS_PASSWORD instead.")
	cfg.IRIS.Password = prompt(reader, "Password", "")

	cfg.IRIS.Namespace = prompt(reader, "Default namespace", cfg.IRIS.Namespace)
	fmt.Println()
}

func saveInitConfig(cwd, configPath string, cfg *Config) {
	if err := os.MkdirAll(ConfigDir(cwd), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create %s directory: %v\n", configDirName, err)
		os.Exit(1)
	}
	if err := SaveConfig(cfg, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot save configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", configPath)
	addToGitignore(cwd)
}

func printNextSteps() {
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .irismcp/config.yaml if needed")
	fmt.Println("  2. Run 'irismcp check' to verify the connection")
	fmt.Println("  3. Add 'irismcp --mcp' as a server in your MCP host")
}

// prompt displays an interactive prompt and reads one line from reader.
// An empty answer returns defaultValue.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultValue
	}
	return input
}

// addToGitignore appends .irismcp/ to dir/.gitignore when the file exists
// and does not already list it. The config file may hold a password.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: gitignorePath built from the working directory
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		switch strings.TrimSpace(line) {
		case configDirName, configDirName + "/", "/" + configDirName, "/" + configDirName + "/":
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0600) //nolint:gosec // G304: gitignorePath built from the working directory
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# irismcp configuration\n" + configDirName + "/\n")
}

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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/irismcp/pkg/tools"
)

const (
	configDirName  = ".irismcp"
	configFileName = "config.yaml"
)

// Config is the contents of .irismcp/config.yaml.
type Config struct {
	IRIS   IRISConfig   `yaml:"iris"`
	Server ServerConfig `yaml:"server"`
}

// IRISConfig describes how to reach the Atelier REST API.
//
// BaseURL, when set, wins over Scheme/Host/Port/PathPrefix.
type IRISConfig struct {
	BaseURL            string `yaml:"base_url,omitempty"`
	Scheme             string `yaml:"scheme"`
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	PathPrefix         string `yaml:"path_prefix,omitempty"`
	Username           string `yaml:"username"`
	Password           string `yaml:"password,omitempty"`
	Namespace          string `yaml:"namespace"`
	Timeout            string `yaml:"timeout"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify,omitempty"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	MetricsAddr         string `yaml:"metrics_addr,omitempty"`
	LogLevel            string `yaml:"log_level"`
	SkipConnectionCheck bool   `yaml:"skip_connection_check,omitempty"`
}

// DefaultConfig returns settings for a local IRIS community instance.
func DefaultConfig() *Config {
	return &Config{
		IRIS: IRISConfig{
			Scheme:    "http",
			Host:      "localhost",
			Port:      52773,
			Username:  "_SYSTEM",
			Password:  "SYS",
			Namespace: "USER",
			Timeout:   tools.DefaultTimeout.String(),
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// ConfigDir returns the .irismcp directory under dir.
func ConfigDir(dir string) string {
	return filepath.Join(dir, configDirName)
}

// ConfigPath returns the default config file path under dir.
func ConfigPath(dir string) string {
	return filepath.Join(ConfigDir(dir), configFileName)
}

// LoadConfig reads the config file, applies environment overrides and
// validates the result.
//
// An empty path means ./.irismcp/config.yaml, which is optional: when it is
// missing the defaults are used. An explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = ConfigPath(cwd)
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from --config or the working directory
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets IRIS_* and IRISMCP_* variables win over the file.
func (c *Config) applyEnvOverrides() error {
	strs := []struct {
		env string
		dst *string
	}{
		{"IRIS_BASE_URL", &c.IRIS.BaseURL},
		{"IRIS_SCHEME", &c.IRIS.Scheme},
		{"IRIS_HOST", &c.IRIS.Host},
		{"IRIS_PATH_PREFIX", &c.IRIS.PathPrefix},
		{"IRIS_USERNAME", &c.IRIS.Username},
		{"IRIS_PASSWORD", &c.IRIS.Password},
		{"IRIS_NAMESPACE", &c.IRIS.Namespace},
		{"IRIS_TIMEOUT", &c.IRIS.Timeout},
		{"IRISMCP_METRICS_ADDR", &c.Server.MetricsAddr},
		{"IRISMCP_LOG_LEVEL", &c.Server.LogLevel},
	}
	for _, s := range strs {
		if v, ok := os.LookupEnv(s.env); ok {
			*s.dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("IRIS_PORT"); ok {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("IRIS_PORT: %q is not a number", v)
		}
		c.IRIS.Port = port
	}
	if v, ok := os.LookupEnv("IRIS_INSECURE_SKIP_VERIFY"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("IRIS_INSECURE_SKIP_VERIFY: %q is not a boolean", v)
		}
		c.IRIS.InsecureSkipVerify = b
	}
	return nil
}

// BaseURL returns the Atelier server root, without the /api/atelier suffix.
func (c *Config) BaseURL() string {
	if c.IRIS.BaseURL != "" {
		return strings.TrimRight(c.IRIS.BaseURL, "/")
	}
	u := url.URL{
		Scheme: strings.ToLower(c.IRIS.Scheme),
		Host:   net.JoinHostPort(c.IRIS.Host, strconv.Itoa(c.IRIS.Port)),
	}
	if p := strings.Trim(c.IRIS.PathPrefix, "/"); p != "" {
		u.Path = "/" + p
	}
	return u.String()
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.IRIS.BaseURL == "" {
		switch strings.ToLower(c.IRIS.Scheme) {
		case "http", "https":
		default:
			return fmt.Errorf("iris.scheme must be http or https, got %q", c.IRIS.Scheme)
		}
		if strings.TrimSpace(c.IRIS.Host) == "" {
			return errors.New("iris.host is required")
		}
		if c.IRIS.Port < 1 || c.IRIS.Port > 65535 {
			return fmt.Errorf("iris.port must be between 1 and 65535, got %d", c.IRIS.Port)
		}
	}
	if strings.TrimSpace(c.IRIS.Namespace) == "" {
		return errors.New("iris.namespace is required")
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := parseLogLevel(c.Server.LogLevel); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses iris.timeout. Empty means tools.DefaultTimeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.IRIS.Timeout) == "" {
		return tools.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.IRIS.Timeout))
	if err != nil {
		return 0, fmt.Errorf("iris.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("iris.timeout must be positive, got %s", d)
	}
	return d, nil
}

// ClientConfig converts the IRIS section for tools.NewClient.
func (c *Config) ClientConfig(logger *slog.Logger) tools.ClientConfig {
	timeout, err := c.TimeoutDuration()
	if err != nil {
		timeout = tools.DefaultTimeout
	}
	return tools.ClientConfig{
		BaseURL:            c.BaseURL(),
		Namespace:          c.IRIS.Namespace,
		Username:           c.IRIS.Username,
		Password:           c.IRIS.Password,
		Timeout:            timeout,
		InsecureSkipVerify: c.IRIS.InsecureSkipVerify,
		Logger:             logger,
	}
}

// SaveConfig writes cfg as YAML. The file holds a password, so it is
// created owner-only.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# irismcp configuration\n# Environment variables (IRIS_*, IRISMCP_*) override these values.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("server.log_level must be debug, info, warn or error, got %q", s)
}

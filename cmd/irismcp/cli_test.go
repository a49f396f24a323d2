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
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/irismcp/internal/errors"
	irtest "github.com/kraklabs/irismcp/internal/testing"
	"github.com/kraklabs/irismcp/pkg/tools"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", json.Number("42")},
		{"1.5", json.Number("1.5")},
		{"true", true},
		{"null", nil},
		{`"quoted"`, "quoted"},
		{"plain text", "plain text"},
		{"Demo.Hello", "Demo.Hello"},
		{"12 34", "12 34"},
		{`{"a":1}`, `{"a":1}`},
		{"[1,2]", "[1,2]"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseParam(tt.in), tt.in)
	}
}

func TestRemoteError_ExitCodes(t *testing.T) {
	status := func(code int) error {
		return &tools.HTTPError{StatusCode: code, Status: http.StatusText(code)}
	}
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.ErrDeadlineExceeded}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"connectivity", refused, errors.ExitNetwork},
		{"unauthorized", status(http.StatusUnauthorized), errors.ExitPermission},
		{"forbidden", status(http.StatusForbidden), errors.ExitPermission},
		{"not found", status(http.StatusNotFound), errors.ExitNotFound},
		{"server error", status(http.StatusInternalServerError), errors.ExitRemote},
		{"gateway", status(http.StatusBadGateway), errors.ExitRemote},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := remoteError(tt.err, "http://iris:52773", "USER")
			var ue *errors.UserError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.want, ue.ExitCode)
		})
	}
}

func TestFetchError(t *testing.T) {
	assert.NoError(t, fetchError(&tools.FetchResult{Status: tools.FetchFound}, "", ""))

	err := fetchError(&tools.FetchResult{Status: tools.FetchNotFound, Message: "Document not found. Tried:\n- X"}, "", "")
	var ue *errors.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, errors.ExitNotFound, ue.ExitCode)
	assert.Contains(t, ue.Cause, "Tried:")

	err = fetchError(&tools.FetchResult{
		Status: tools.FetchAborted,
		Err:    &tools.HTTPError{StatusCode: http.StatusUnauthorized},
	}, "http://iris", "USER")
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, errors.ExitPermission, ue.ExitCode)

	err = fetchError(&tools.FetchResult{Status: tools.FetchAborted, Message: "sleep interrupted"}, "", "")
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, errors.ExitRemote, ue.ExitCode)
}

func TestNewLogger_Levels(t *testing.T) {
	cfg := DefaultConfig()
	var buf bytes.Buffer

	logger := newLogger(&buf, cfg, false)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))

	logger = newLogger(&buf, cfg, true)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	cfg.Server.LogLevel = "error"
	logger = newLogger(&buf, cfg, false)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func testConfig(fake *irtest.FakeAtelier) *Config {
	cfg := DefaultConfig()
	cfg.IRIS.BaseURL = fake.URL()
	cfg.IRIS.Timeout = "5s"
	return cfg
}

func TestCheckConnection(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("USER", "A.cls")
	fake.AddDocument("%SYS", "B.cls")

	result, err := checkConnection(context.Background(), testConfig(fake), discardLogger())
	require.NoError(t, err)
	assert.Equal(t, fake.URL(), result.Target)
	assert.Equal(t, "USER", result.Namespace)
	assert.Equal(t, irtest.DefaultVersion, result.Version)
	assert.Equal(t, []string{"%SYS", "USER"}, result.Namespaces)
	assert.True(t, result.NamespaceAvailable)
	assert.True(t, result.SQLAvailable)
	assert.Empty(t, result.Warning)
}

func TestCheckConnection_MissingNamespaceAndSQLFailure(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.AddDocument("APP", "A.cls")
	fake.SetQueryResponse(http.StatusInternalServerError, irtest.ErrorEnvelope("SQLCODE -30"))

	result, err := checkConnection(context.Background(), testConfig(fake), discardLogger())
	require.NoError(t, err)
	assert.False(t, result.NamespaceAvailable)
	assert.False(t, result.SQLAvailable)
	assert.NotEmpty(t, result.SQLError)
}

func TestCheckConnection_Warning(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.SetServerInfo(http.StatusInternalServerError, "boom")

	result, err := checkConnection(context.Background(), testConfig(fake), discardLogger())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
	assert.True(t, result.SQLAvailable)
}

func TestCheckConnection_AuthFailure(t *testing.T) {
	fake := irtest.NewFakeAtelier(t)
	fake.Username = "_SYSTEM"
	fake.Password = "right"
	cfg := testConfig(fake)
	cfg.IRIS.Password = "wrong"

	_, err := checkConnection(context.Background(), cfg, discardLogger())
	var ue *errors.UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, errors.ExitPermission, ue.ExitCode)
}

func TestCreateInitConfig(t *testing.T) {
	cfg := createInitConfig(initFlags{host: "iris.local", port: 1972, scheme: "HTTPS", namespace: "APP"})
	assert.Equal(t, "https://iris.local:1972", cfg.BaseURL())
	assert.Equal(t, "APP", cfg.IRIS.Namespace)
	assert.Empty(t, cfg.IRIS.Password)
	assert.NoError(t, cfg.Validate())

	cfg = createInitConfig(initFlags{baseURL: "https://iris.example.com/app"})
	assert.Equal(t, "https://iris.example.com/app", cfg.BaseURL())
}

func TestRunInteractiveConfig(t *testing.T) {
	// scheme, host, port, username, password, namespace
	input := "https\niris.example.com\nnot-a-port\ndev\n\nAPP\n"
	cfg := createInitConfig(initFlags{})
	runInteractiveConfig(bufio.NewReader(strings.NewReader(input)), cfg)

	assert.Equal(t, "https", cfg.IRIS.Scheme)
	assert.Equal(t, "iris.example.com", cfg.IRIS.Host)
	assert.Equal(t, 52773, cfg.IRIS.Port)
	assert.Equal(t, "dev", cfg.IRIS.Username)
	assert.Empty(t, cfg.IRIS.Password)
	assert.Equal(t, "APP", cfg.IRIS.Namespace)
}

func TestPrompt_Default(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader("\n  value  \n"))
	assert.Equal(t, "def", prompt(reader, "First", "def"))
	assert.Equal(t, "value", prompt(reader, "Second", "def"))
	assert.Equal(t, "def", prompt(reader, "EOF", "def"))
}

func TestAddToGitignore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")

	// No .gitignore: nothing is created.
	addToGitignore(dir)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(path, []byte("bin/"), 0600))
	addToGitignore(dir)
	addToGitignore(dir)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bin/\n\n# irismcp configuration\n.irismcp/\n", string(content))
}

func TestAddToGitignore_AlreadyListed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(path, []byte("/.irismcp\n"), 0600))

	addToGitignore(dir)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/.irismcp\n", string(content))
}

func TestCompletionScript(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		script, ok := completionScript(shell)
		require.True(t, ok, shell)
		for _, cmd := range []string{"serve", "check", "query", "docs", "init"} {
			assert.Contains(t, script, cmd, shell)
		}
	}
	_, ok := completionScript("powershell")
	assert.False(t, ok)
}

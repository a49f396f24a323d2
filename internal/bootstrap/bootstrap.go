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

package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	clierrors "github.com/kraklabs/irismcp/internal/errors"
	"github.com/kraklabs/irismcp/pkg/tools"
)

// Options configures Connect.
type Options struct {
	// Client is the Atelier client configuration.
	Client tools.ClientConfig

	// SkipCheck disables the startup request to the server.
	SkipCheck bool

	// Logger is optional; nil uses slog.Default().
	Logger *slog.Logger
}

// Session is a connected client plus what the startup check learned.
type Session struct {
	Client *tools.Client

	// Info is the server info payload. Nil when the check was skipped or failed.
	Info       any
	Version    string
	Namespaces []string

	// Warning holds a pre-check failure that did not stop startup.
	Warning error
}

// Close releases the client's idle connections.
func (s *Session) Close() {
	if s != nil && s.Client != nil {
		s.Client.Close()
	}
}

// Connect builds the process-wide Atelier client and runs the startup check.
//
// The check requests the server info endpoint and classifies a failure the
// same way the tools do:
//   - server unreachable: fatal, returns a NetworkError
//   - credentials rejected: fatal, returns an AuthError
//   - anything else: logged, kept in Session.Warning, startup continues
//
// A bad client configuration returns a ConfigError without any request.
func Connect(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Client.Logger == nil {
		opts.Client.Logger = logger
	}

	client, err := tools.NewClient(opts.Client)
	if err != nil {
		return nil, clierrors.NewConfigError(
			"Invalid IRIS connection settings",
			err.Error(),
			"Set IRIS_BASE_URL or IRIS_HOST/IRIS_PORT, or edit .irismcp/config.yaml",
			err,
		)
	}
	session := &Session{Client: client}

	if opts.SkipCheck {
		logger.Info("bootstrap.check.skipped", "target", client.Target())
		return session, nil
	}

	logger.Debug("bootstrap.check.start", "target", client.Target(), "namespace", client.DefaultNamespace())
	info, err := client.ServerInfo(ctx)
	switch tools.Decide(err, tools.MaxAttempts) {
	case tools.OutcomeSuccess:
		session.Info = info
		session.Version = tools.ServerVersion(info)
		session.Namespaces = tools.ServerNamespaces(info)
		logger.Info("bootstrap.check.success",
			"target", client.Target(),
			"version", session.Version,
			"namespaces", len(session.Namespaces),
		)
		return session, nil

	case tools.OutcomeAbortConnectivity:
		client.Close()
		return nil, clierrors.NewNetworkError(
			fmt.Sprintf("Cannot reach IRIS at %s", client.Target()),
			err.Error(),
			"Check IRIS_HOST, IRIS_PORT and IRIS_SCHEME (or IRIS_BASE_URL) and that the IRIS web server is running",
			err,
		)

	case tools.OutcomeAbortAuth:
		client.Close()
		return nil, clierrors.NewAuthError(
			fmt.Sprintf("IRIS at %s rejected the credentials", client.Target()),
			err.Error(),
			"Check IRIS_USERNAME and IRIS_PASSWORD and that the user has the %Development role",
			err,
		)
	}

	logger.Warn("bootstrap.check.warning", "target", client.Target(), "err", err)
	session.Warning = err
	return session, nil
}

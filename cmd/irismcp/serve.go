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
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/irismcp/internal/bootstrap"
	clierrors "github.com/kraklabs/irismcp/internal/errors"
)

// runServe executes the 'serve' command: the MCP server on stdio.
//
// Startup connects to IRIS once. An unreachable server or rejected
// credentials stop the process before any tool is registered; any other
// startup failure is logged and the server starts anyway.
//
// Flags:
//   - --metrics-addr: Serve Prometheus metrics on this address
//   - --skip-check: Do not contact IRIS at startup
func runServe(args []string, globals GlobalFlags) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9464)")
	skipCheck := fs.Bool("skip-check", false, "Do not contact IRIS at startup")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: irismcp serve [options]

Description:
  Start the MCP server, speaking JSON-RPC over stdin/stdout. Logs go to
  stderr. Configure your MCP host to run this command.

Tools:
  iris_get_document     Source of a class or routine
  iris_execute_sql      Read-only SQL as a markdown table
  iris_list_documents   Document names in a namespace
  iris_server_info      Server version and namespaces

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  irismcp serve
  irismcp --mcp --config /etc/irismcp.yaml
  irismcp serve --metrics-addr :9464
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadConfig(globals)
	if *metricsAddr != "" {
		cfg.Server.MetricsAddr = *metricsAddr
	}
	if *skipCheck {
		cfg.Server.SkipConnectionCheck = true
	}

	logger := newLogger(os.Stderr, cfg, globals.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session, err := bootstrap.Connect(ctx, bootstrap.Options{
		Client:    cfg.ClientConfig(logger),
		SkipCheck: cfg.Server.SkipConnectionCheck,
		Logger:    logger,
	})
	if err != nil {
		clierrors.FatalError(err, globals.JSON)
	}
	defer session.Close()

	tb := newToolbox(session.Client, logger)
	if err := serveMCP(ctx, tb, &mcp.StdioTransport{}, cfg.Server.MetricsAddr); err != nil {
		session.Close()
		clierrors.FatalError(clierrors.NewInternalError(
			"MCP server stopped with an error",
			err.Error(),
			"Run with --debug and check the MCP host logs",
			err,
		), globals.JSON)
	}
	logger.Info("mcp.server.stop")
}

// serveMCP runs the MCP server on transport until the peer disconnects or
// ctx is cancelled. When metricsAddr is set a /metrics endpoint runs
// alongside it and is shut down with it.
func serveMCP(ctx context.Context, tb *toolbox, transport mcp.Transport, metricsAddr string) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	server := newMCPServer(tb)

	g.Go(func() error {
		defer cancel()
		tb.logger.Info("mcp.server.start",
			"target", tb.client.Target(),
			"namespace", tb.client.DefaultNamespace(),
			"tools", len(toolDefs),
		)
		err := server.Run(gctx, transport)
		if err != nil && (gctx.Err() != nil || errors.Is(err, io.EOF)) {
			return nil
		}
		return err
	})

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			tb.logger.Info("metrics.http.start", "addr", metricsAddr, "path", "/metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				tb.logger.Warn("metrics.http.error", "err", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

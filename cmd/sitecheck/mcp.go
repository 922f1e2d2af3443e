// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	sitemcp "github.com/agentberlin/sitecheck/internal/mcp"
	"github.com/agentberlin/sitecheck/internal/store"
)

func newMCPCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the site checks as MCP tools",
		Long: `Serves resolve_sitemap, discover_pages and check_page to an MCP client over
stdin and stdout, or over streamable HTTP with --http. Pages are fetched
over plain HTTP. The run history tools are available when history is
enabled or --history-db is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sitemcp.Options{}
			if a.cfg.History.Enabled || a.opts.historyDB != "" {
				st, err := store.Open(a.cfg.History.Path)
				if err != nil {
					return err
				}
				defer st.Close()
				opts.Store = st
			}

			srv := sitemcp.NewServer(a.cfg, version, opts, a.logger)
			if addr == "" {
				return srv.RunStdio(cmd.Context())
			}
			return serveHTTP(cmd.Context(), a, addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "http", "", "serve streamable HTTP on this address instead of stdio, e.g. localhost:8090")
	return cmd
}

// serveHTTP runs handler on addr until ctx is done.
func serveHTTP(ctx context.Context, a *app, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("addr", addr).Info("Serving MCP over HTTP")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down MCP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

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

// Package mcp exposes the site checks as Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/agentberlin/sitecheck"
	"github.com/agentberlin/sitecheck/internal/store"
)

const ServerName = "sitecheck"

// Options wires the server's dependencies. Zero values use the config.
type Options struct {
	// Transport replaces the HTTP transport of sitemap and page fetches
	Transport http.RoundTripper
	// Renderer replaces the plain HTTP page renderer
	Renderer sitecheck.Renderer
	// Dictionary and Grammar replace the engines loaded from the config
	Dictionary sitecheck.Dictionary
	Grammar    sitecheck.GrammarEngine
	// Store enables the run history tools
	Store *store.Store
}

// Server wraps an MCP server whose tools run site checks.
type Server struct {
	server *mcp.Server
	cfg    *sitecheck.Config
	opts   Options
	logger logrus.FieldLogger

	mu     sync.Mutex
	loaded bool
	dict   sitecheck.Dictionary
	engine sitecheck.GrammarEngine
}

// NewServer creates the server and registers its tools.
func NewServer(cfg *sitecheck.Config, version string, opts Options, logger logrus.FieldLogger) *Server {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil),
		cfg:    cfg,
		opts:   opts,
		logger: logger,
	}
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// RunStdio serves one client over stdin and stdout until ctx is done or the
// client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns a streamable HTTP handler serving every client from this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

func (s *Server) renderer() sitecheck.Renderer {
	if s.opts.Renderer != nil {
		return s.opts.Renderer
	}
	return sitecheck.NewHTTPRenderer(s.cfg.Fetch, s.opts.Transport, s.logger)
}

// engines loads the dictionary and grammar engine on first use. Either may be
// nil when it is unavailable, which disables that check.
func (s *Server) engines(ctx context.Context) (sitecheck.Dictionary, sitecheck.GrammarEngine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.dict, s.engine, nil
	}

	dict := s.opts.Dictionary
	if dict == nil {
		list, err := sitecheck.LoadWordListFile(s.cfg.Content.DictionaryPath)
		switch {
		case errors.Is(err, sitecheck.ErrNoDictionary):
			s.logger.WithError(err).Warn("Spelling check disabled")
		case err != nil:
			return nil, nil, err
		default:
			dict = list
		}
	}

	engine := s.opts.Grammar
	if engine == nil {
		lt, err := sitecheck.NewLanguageTool(ctx, sitecheck.LanguageToolOptions{
			Server:    s.cfg.Content.GrammarServer,
			Language:  s.cfg.Content.Language,
			Timeout:   s.cfg.Fetch.Timeout,
			Transport: s.opts.Transport,
		}, s.logger)
		switch {
		case errors.Is(err, sitecheck.ErrEngineUnavailable):
			s.logger.WithError(err).Warn("Grammar check disabled")
		case err != nil:
			return nil, nil, err
		default:
			engine = lt
		}
	}

	s.dict, s.engine, s.loaded = dict, engine, true
	return dict, engine, nil
}

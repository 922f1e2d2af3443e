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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/agentberlin/sitecheck"
	"github.com/agentberlin/sitecheck/internal/config"
	"github.com/agentberlin/sitecheck/internal/report"
	"github.com/agentberlin/sitecheck/internal/store"
)

// errChecksFailed is returned when a structural form check failed.
var errChecksFailed = errors.New("one or more checks failed")

type rootOptions struct {
	configPath string
	baseURL    string
	logLevel   string
	logFormat  string
	format     string
	output     string
	noColor    bool
	save       bool
	historyDB  string
}

// app is the state shared by every subcommand once the root has run its
// PersistentPreRunE.
type app struct {
	opts    rootOptions
	cfg     *sitecheck.Config
	logger  *logrus.Entry
	runID   uuid.UUID
	started time.Time
	format  report.Format
}

// NewRootCmd returns the root command for the sitecheck CLI
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "sitecheck",
		Short:         "Content and form checks for pnncle.com",
		Long:          "sitecheck resolves a site's pages from its sitemap, scans them for spelling and grammar errors, and exercises its forms.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "config file (default is ./"+config.DefaultPath+" when present)")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "site to check (overrides the config file)")
	flags.StringVar(&a.opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flags.StringVar(&a.opts.logFormat, "log-format", "text", "log format: text|json")
	flags.StringVar(&a.opts.format, "format", string(report.FormatText), "report format: text|markdown|json")
	flags.StringVarP(&a.opts.output, "output", "o", "", "write the report to this file or directory instead of stdout")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colours in the text report")
	flags.BoolVar(&a.opts.save, "save", false, "record the run in the history database")
	flags.StringVar(&a.opts.historyDB, "history-db", "", "history database file (default from config, else ~/.sitecheck/history.db)")

	rootCmd.AddCommand(newSitemapCmd(a))
	rootCmd.AddCommand(newDiscoverCmd(a))
	rootCmd.AddCommand(newContentCmd(a))
	rootCmd.AddCommand(newFormsCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newMCPCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	a.runID = uuid.New()
	a.started = time.Now()

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	level, err := logrus.ParseLevel(a.opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	switch a.opts.logFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", a.opts.logFormat)
	}
	a.logger = logger.WithField("run", a.runID.String())

	if a.format, err = report.ParseFormat(a.opts.format); err != nil {
		return err
	}

	cfg, err := config.Load(a.opts.configPath, a.logger)
	if err != nil {
		return err
	}
	if a.opts.baseURL != "" {
		cfg.BaseURL = a.opts.baseURL
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	if a.opts.save {
		cfg.History.Enabled = true
	}
	if a.opts.historyDB != "" {
		cfg.History.Path = a.opts.historyDB
	}
	a.cfg = cfg
	a.logger.WithField("base_url", cfg.BaseURL).Debug("Configuration loaded")
	return nil
}

// newReport starts the report for this run.
func (a *app) newReport() *report.Report {
	return report.New(a.runID, a.cfg.BaseURL, a.started)
}

// writeReport finishes r, renders it and records it when history is enabled.
func (a *app) writeReport(cmd *cobra.Command, r *report.Report) error {
	r.Finished = time.Now()
	if err := a.render(cmd, r); err != nil {
		return err
	}
	if a.cfg.History.Enabled {
		a.record(r)
	}
	return nil
}

// render writes r to --output, or to the command's stdout. An output
// naming an existing directory gets a generated file name.
func (a *app) render(cmd *cobra.Command, r *report.Report) error {
	reporter, err := report.NewReporter(a.format, a.cfg.Content.ReportLimit)
	if err != nil {
		return err
	}
	if text, ok := reporter.(*report.TextReporter); ok {
		text.NoColor = a.opts.noColor || a.opts.output != ""
	}

	if a.opts.output == "" || a.opts.output == "-" {
		return reporter.Write(cmd.OutOrStdout(), r)
	}

	path := a.opts.output
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, report.FileName(r.BaseURL, a.format, r.Started))
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := reporter.Write(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	a.logger.WithField("path", path).Info("Report written")
	return nil
}

// record saves r to the history database. A history failure is logged and
// never fails the run.
func (a *app) record(r *report.Report) {
	st, err := store.Open(a.cfg.History.Path)
	if err != nil {
		a.logger.WithError(err).Warn("Run not recorded")
		return
	}
	defer st.Close()

	if _, err := st.Save(r); err != nil {
		a.logger.WithError(err).Warn("Run not recorded")
		return
	}
	pruned, err := st.Prune(r.BaseURL, a.cfg.History.Keep)
	if err != nil {
		a.logger.WithError(err).Warn("History not pruned")
	}
	a.logger.WithField("pruned", pruned).Info("Run recorded")
}

// renderer returns the page renderer selected by the config: a Chrome tab,
// or plain HTTP when the browser is disabled. The returned func releases it.
func (a *app) renderer() (sitecheck.Renderer, func(), error) {
	if !a.cfg.Content.UseBrowser {
		return sitecheck.NewHTTPRenderer(a.cfg.Fetch, nil, a.logger), func() {}, nil
	}
	tab, release, err := a.tab()
	if err != nil {
		return nil, nil, err
	}
	return tab, release, nil
}

// tab starts Chrome and opens one tab in its own browser context.
func (a *app) tab() (*sitecheck.Tab, func(), error) {
	browser, err := sitecheck.NewBrowser(a.cfg.Browser, a.logger)
	if err != nil {
		return nil, nil, err
	}
	tab, err := browser.NewTab()
	if err != nil {
		browser.Close()
		return nil, nil, err
	}
	return tab, func() {
		tab.Close()
		browser.Close()
	}, nil
}

func printLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

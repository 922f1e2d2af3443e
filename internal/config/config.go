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

// Package config loads sitecheck configuration. Values are layered in this
// order, later layers winning: built-in defaults, the YAML file, .env files,
// and SITECHECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/agentberlin/sitecheck"
)

const (
	// DefaultPath is read when no config file is given. It may be absent.
	DefaultPath = "sitecheck.yaml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "SITECHECK_"
)

// ErrConfigNotFound is returned when an explicitly requested config file does not exist
var ErrConfigNotFound = errors.New("config file not found")

// EnvFiles are loaded, when present, before environment overrides are applied.
// Variables already set in the process environment are not replaced.
var EnvFiles = []string{".env"}

// Load builds the configuration. An empty path reads DefaultPath if it exists.
func Load(path string, logger logrus.FieldLogger) (*sitecheck.Config, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cfg := sitecheck.DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := loadFile(cfg, path); err != nil {
		if !errors.Is(err, ErrConfigNotFound) || explicit {
			return nil, err
		}
		logger.WithField("path", path).Debug("No config file, using defaults")
	} else {
		logger.WithField("path", path).Debug("Loaded config file")
	}

	LoadEnvFiles(logger, EnvFiles...)
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *sitecheck.Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnvFiles loads each existing file into the process environment.
func LoadEnvFiles(logger logrus.FieldLogger, files ...string) {
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			logger.WithError(err).Warnf("Failed to load %s", file)
			continue
		}
		loaded = append(loaded, file)
	}
	if len(loaded) > 0 {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

type envBinding struct {
	key   string
	apply func(string) error
}

func stringVar(p *string) func(string) error {
	return func(v string) error { *p = v; return nil }
}

func listVar(p *[]string) func(string) error {
	return func(v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*p = out
		return nil
	}
}

func intVar(p *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*p = n
		return nil
	}
}

func boolVar(p *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*p = b
		return nil
	}
}

func durationVar(p *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*p = d
		return nil
	}
}

// ApplyEnv overrides cfg from SITECHECK_* variables. Empty variables are ignored.
func ApplyEnv(cfg *sitecheck.Config) error {
	bindings := []envBinding{
		{"BASE_URL", stringVar(&cfg.BaseURL)},
		{"SITEMAP_PATH", stringVar(&cfg.SitemapPath)},
		{"FALLBACK_PATHS", listVar(&cfg.FallbackPaths)},
		{"FETCH_TIMEOUT", durationVar(&cfg.Fetch.Timeout)},
		{"FETCH_RETRY_COUNT", intVar(&cfg.Fetch.RetryCount)},
		{"USER_AGENT", stringVar(&cfg.Fetch.UserAgent)},
		{"FETCH_CONCURRENCY", intVar(&cfg.Fetch.Concurrency)},
		{"CRAWL_MAX_PAGES", intVar(&cfg.Crawl.MaxPages)},
		{"CRAWL_MAX_LINKS_PER_PAGE", intVar(&cfg.Crawl.MaxLinksPerPage)},
		{"BROWSER_HEADLESS", boolVar(&cfg.Browser.Headless)},
		{"BROWSER_EXEC_PATH", stringVar(&cfg.Browser.ExecPath)},
		{"BROWSER_NAVIGATION_TIMEOUT", durationVar(&cfg.Browser.NavigationTimeout)},
		{"BROWSER_QUIESCENCE_TIMEOUT", durationVar(&cfg.Browser.QuiescenceTimeout)},
		{"DICTIONARY_PATH", stringVar(&cfg.Content.DictionaryPath)},
		{"BRAND_ALLOWLIST", listVar(&cfg.Content.BrandAllowlist)},
		{"GRAMMAR_SERVER", stringVar(&cfg.Content.GrammarServer)},
		{"LANGUAGE", stringVar(&cfg.Content.Language)},
		{"CONTENT_MAX_PAGES", intVar(&cfg.Content.MaxPages)},
		{"REPORT_LIMIT", intVar(&cfg.Content.ReportLimit)},
		{"USE_BROWSER", boolVar(&cfg.Content.UseBrowser)},
		{"SETTLE_DELAY", durationVar(&cfg.Forms.SettleDelay)},
		{"FEEDBACK_TIMEOUT", durationVar(&cfg.Forms.FeedbackTimeout)},
		{"TEST_NAME", stringVar(&cfg.Forms.TestData.Name)},
		{"TEST_EMAIL", stringVar(&cfg.Forms.TestData.Email)},
		{"TEST_PHONE", stringVar(&cfg.Forms.TestData.Phone)},
		{"TEST_OTHER", stringVar(&cfg.Forms.TestData.Other)},
		{"HISTORY_ENABLED", boolVar(&cfg.History.Enabled)},
		{"HISTORY_PATH", stringVar(&cfg.History.Path)},
	}

	var errs []error
	for _, b := range bindings {
		v := strings.TrimSpace(os.Getenv(EnvPrefix + b.key))
		if v == "" {
			continue
		}
		if err := b.apply(v); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err))
		}
	}
	return errors.Join(errs...)
}

// Validate rejects configurations the checks cannot run with.
func Validate(cfg *sitecheck.Config) error {
	var errs []error

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url %q must be an absolute http(s) URL", cfg.BaseURL))
	}
	if cfg.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if cfg.History.Keep < 0 {
		errs = append(errs, errors.New("history.keep must not be negative"))
	}
	if cfg.Fetch.Concurrency < 0 {
		errs = append(errs, errors.New("fetch.concurrency must not be negative"))
	}
	if cfg.Browser.ViewportWidth <= 0 || cfg.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("browser viewport must be positive"))
	}
	for _, page := range cfg.Forms.Pages {
		for _, role := range page.Fields {
			if !role.Valid() {
				errs = append(errs, fmt.Errorf("forms page %s: unknown field role %q", page.Path, role))
			}
		}
	}
	return errors.Join(errs...)
}

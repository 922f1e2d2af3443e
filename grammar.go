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

package sitecheck

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// GrammarMatch is one issue reported by a grammar engine. Offset and Length
// count UTF-16 code units of the checked text.
type GrammarMatch struct {
	Message      string
	RuleID       string
	Offset       int
	Length       int
	Replacements []string
}

// GrammarEngine checks a piece of text.
type GrammarEngine interface {
	Check(ctx context.Context, text string) ([]GrammarMatch, error)
}

// LanguageTool is a GrammarEngine backed by a LanguageTool server's v2 HTTP API.
type LanguageTool struct {
	client   *resty.Client
	language string
	logger   logrus.FieldLogger
}

// LanguageToolOptions configures a LanguageTool client.
type LanguageToolOptions struct {
	// Server is the server root, e.g. http://localhost:8081
	Server string
	// Language is a LanguageTool language code such as en-US
	Language string
	Timeout  time.Duration
	// Transport replaces the default HTTP transport when set
	Transport http.RoundTripper
}

type ltLanguage struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	LongCode string `json:"longCode"`
}

type ltCheckResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Rule struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// NewLanguageTool connects to a LanguageTool server. The server is checked once;
// when it cannot be reached the error wraps ErrEngineUnavailable and callers
// are expected to continue without grammar checks.
func NewLanguageTool(ctx context.Context, opts LanguageToolOptions, logger logrus.FieldLogger) (*LanguageTool, error) {
	logger = orDiscard(logger)
	if opts.Language == "" {
		opts.Language = "en-US"
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(opts.Server, "/")).
		SetLogger(logger)
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	var languages []ltLanguage
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&languages).
		Get("/v2/languages")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s answered %s", ErrEngineUnavailable, opts.Server, resp.Status())
	}

	logger.WithFields(logrus.Fields{
		"server":    opts.Server,
		"languages": len(languages),
	}).Debug("connected to LanguageTool")

	return &LanguageTool{client: client, language: opts.Language, logger: logger}, nil
}

// Check posts text to /v2/check.
func (lt *LanguageTool) Check(ctx context.Context, text string) ([]GrammarMatch, error) {
	var result ltCheckResponse
	resp, err := lt.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"text":     text,
			"language": lt.language,
		}).
		SetResult(&result).
		Post("/v2/check")
	if err != nil {
		return nil, fmt.Errorf("languagetool check: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("languagetool check: unexpected status %d", resp.StatusCode())
	}

	matches := make([]GrammarMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		gm := GrammarMatch{
			Message: m.Message,
			RuleID:  m.Rule.ID,
			Offset:  m.Offset,
			Length:  m.Length,
		}
		for _, r := range m.Replacements {
			gm.Replacements = append(gm.Replacements, r.Value)
		}
		matches = append(matches, gm)
	}
	return matches, nil
}

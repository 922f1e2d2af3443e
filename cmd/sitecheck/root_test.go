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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/sitecheck"
	"github.com/agentberlin/sitecheck/testutil"
)

// execute runs the CLI with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeDictionary(t *testing.T, words ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, "\n")+"\n"), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "sitecheck dev\n"))
}

func TestSitemapCmd(t *testing.T) {
	srv := testutil.NewSiteServer()
	defer srv.Close()

	out, _, err := execute(t, "--base-url", srv.URL, "sitemap")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		srv.URL + "/",
		srv.URL + "/about/",
		srv.URL + "/kingdom-stories/",
		srv.URL + "/kingdom-stories/first-story/",
		srv.URL + "/kingdom-stories/second-story/",
	}, lines)
}

func TestSitemapCmd_IndexUnavailable(t *testing.T) {
	srv := testutil.NewSiteServer()
	defer srv.Close()

	_, _, err := execute(t, "--base-url", srv.URL, "sitemap", "--index", srv.URL+"/missing.xml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sitecheck.ErrResolution))
}

func TestDiscoverCmd(t *testing.T) {
	srv := testutil.NewSiteServer()
	defer srv.Close()

	out, _, err := execute(t, "--base-url", srv.URL, "discover", "--http", "--no-fallbacks", "--max-pages", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.LessOrEqual(t, len(lines), 3)
	assert.Equal(t, srv.URL+"/", lines[0])
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, srv.URL), l)
	}
}

func TestContentCmd_JSON(t *testing.T) {
	srv := testutil.NewSiteServer()
	defer srv.Close()
	lt := testutil.NewLanguageToolServer(testutil.DefaultGrammarRules)
	defer lt.Close()

	out, _, err := execute(t,
		"--base-url", srv.URL,
		"--format", "json",
		"content",
		"--source", "posts",
		"--http",
		"--dictionary", writeDictionary(t, "test", "set"),
		"--grammar-server", lt.URL,
	)
	require.NoError(t, err)

	var doc struct {
		RunID   string `json:"runId"`
		Targets struct {
			Status string `json:"status"`
		} `json:"targets"`
		Pages []struct {
			URL      string `json:"url"`
			Status   string `json:"status"`
			Findings []struct {
				Kind        string   `json:"kind"`
				Word        string   `json:"word"`
				Suggestions []string `json:"suggestions"`
			} `json:"findings"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.NotEmpty(t, doc.RunID)
	assert.Equal(t, "ok", doc.Targets.Status)
	require.Len(t, doc.Pages, 2)
	first := doc.Pages[0]
	assert.Equal(t, srv.URL+"/kingdom-stories/first-story/", first.URL)
	assert.Equal(t, "ok", first.Status)

	var tset, grammar bool
	for _, f := range first.Findings {
		if f.Kind == "spelling" && f.Word == "tset" {
			tset = true
			require.NotEmpty(t, f.Suggestions)
			assert.Equal(t, "test", f.Suggestions[0])
		}
		if f.Kind == "grammar" && f.Word == "a apple" {
			grammar = true
		}
	}
	assert.True(t, tset, "planted typo reported")
	assert.True(t, grammar, "planted grammar error reported")
}

func TestContentCmd_DegradesWithoutDictionaryOrEngine(t *testing.T) {
	srv := testutil.NewSiteServer()
	defer srv.Close()
	lt := testutil.NewLanguageToolServer(testutil.DefaultGrammarRules)
	lt.Close()

	out, logs, err := execute(t,
		"--base-url", srv.URL,
		"--no-color",
		"content",
		"--source", "home",
		"--http",
		"--dictionary", filepath.Join(t.TempDir(), "missing.txt"),
		"--grammar-server", lt.URL,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ No spelling errors found")
	assert.Contains(t, out, "✓ No grammar errors found")
	assert.Contains(t, logs, "Spelling check disabled")
	assert.Contains(t, logs, "Grammar check disabled")
}

func TestContentCmd_OutputDirectory(t *testing.T) {
	srv := testutil.NewSiteServer()
	defer srv.Close()
	dir := t.TempDir()

	out, _, err := execute(t,
		"--base-url", srv.URL,
		"--format", "markdown",
		"--output", dir,
		"content", "--source", "home", "--http", "--no-spelling", "--no-grammar",
	)
	require.NoError(t, err)
	assert.Empty(t, out)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "sitecheck-127-0-0-1-"), name)
	assert.True(t, strings.HasSuffix(name, ".md"), name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Site check report"))
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "xml", "sitemap"}, "unknown report format"},
		{"log level", []string{"--log-level", "loud", "sitemap"}, "invalid log level"},
		{"log format", []string{"--log-format", "xml", "sitemap"}, "invalid log format"},
		{"base url", []string{"--base-url", "ftp://pnncle.com", "sitemap"}, "base_url"},
		{"source", []string{"content", "--source", "rss", "--http"}, "unknown target source"},
		{"missing config", []string{"--config", "does-not-exist.yaml", "sitemap"}, "config file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSelectFormPages(t *testing.T) {
	configured := sitecheck.DefaultConfig().Forms.Pages

	all, err := selectFormPages(configured, nil)
	require.NoError(t, err)
	assert.Equal(t, configured, all)

	some, err := selectFormPages(configured, []string{"/contact/", "/equip/"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "/equip/", some[0].Path, "config order is kept")
	assert.Equal(t, "/contact/", some[1].Path)

	_, err = selectFormPages(configured, []string{"/careers/"})
	assert.Error(t, err)
}

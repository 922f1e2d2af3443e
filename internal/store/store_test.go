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

package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentberlin/sitecheck"
	"github.com/agentberlin/sitecheck/internal/report"
)

const base = "https://pnncle.com"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newReport(t *testing.T, id string, started time.Time) *report.Report {
	t.Helper()
	r := report.New(uuid.MustParse(id), base, started)
	r.Finished = started.Add(90 * time.Second)
	targets := sitecheck.OK(base + "/sitemap_index.xml")
	r.Targets = &targets
	story := base + "/kingdom-stories/first-story/"
	r.Pages = []sitecheck.PageReport{
		{
			URL:     story,
			Outcome: sitecheck.OK(story),
			Findings: []sitecheck.Finding{
				{
					Kind:          sitecheck.KindSpelling,
					URL:           story,
					Paragraph:     1,
					Word:          "tset",
					Before:        "This is a",
					After:         "of content",
					ParagraphText: "This is a tset of content.",
					Suggestions:   []string{"test", "set"},
				},
				{
					Kind:        sitecheck.KindGrammar,
					URL:         story,
					Paragraph:   2,
					Word:        "a apple",
					Message:     "Use \"an\" instead of \"a\"",
					Rule:        "EN_A_VS_AN",
					Suggestions: []string{},
				},
			},
		},
		{URL: base + "/", Outcome: sitecheck.Skipped(base+"/", "page has too little text"), Findings: []sitecheck.Finding{}},
	}
	r.Forms = []sitecheck.FormResult{
		{Page: base + "/contact/", Outcome: sitecheck.OK(base + "/contact/"), Filled: []sitecheck.FieldRole{sitecheck.RoleName, sitecheck.RoleEmail}},
		{Page: base + "/go/", Outcome: sitecheck.Skipped(base+"/go/", "no visible submit control"), Filled: []sitecheck.FieldRole{}},
	}
	r.Accessibility = []sitecheck.Outcome{
		sitecheck.OK(base + "/contact/ form 1"),
		sitecheck.Failed(base+"/equip/ form 1", "form 1 on %s/equip/ has no submit button", base),
	}
	return r
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "history.db")
	st, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	assert.FileExists(t, path)
}

func TestStore_SaveAndGet(t *testing.T) {
	st := openTestStore(t)
	started := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	want := newReport(t, "7b0c3a52-58e4-4c1e-9f0a-3c2d6a1e9b11", started)

	run, err := st.Save(want)
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Equal(t, 1, run.PagesScanned)
	assert.Equal(t, 1, run.PagesSkipped)
	assert.Equal(t, 1, run.Spelling)
	assert.Equal(t, 1, run.Grammar)
	assert.Equal(t, 1, run.FormsOK)
	assert.Equal(t, 1, run.FormsSkipped)
	assert.Equal(t, 1, run.Failed)

	loaded, err := st.Get(want.RunID)
	require.NoError(t, err)
	got, err := loaded.Report()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, want.Summary(), got.Summary())
}

func TestStore_GetByPrefix(t *testing.T) {
	st := openTestStore(t)
	now := time.Now().UTC()
	_, err := st.Save(newReport(t, "7b0c3a52-0000-4000-8000-000000000001", now))
	require.NoError(t, err)
	_, err = st.Save(newReport(t, "7b0c3a52-0000-4000-8000-000000000002", now))
	require.NoError(t, err)
	_, err = st.Save(newReport(t, "9f000000-0000-4000-8000-000000000003", now))
	require.NoError(t, err)

	tests := []struct {
		id      string
		want    string
		wantErr error
	}{
		{id: "9f", want: "9f000000-0000-4000-8000-000000000003"},
		{id: "7b0c3a52-0000-4000-8000-000000000002", want: "7b0c3a52-0000-4000-8000-000000000002"},
		{id: "7b0c", wantErr: ErrAmbiguous},
		{id: "ffff", wantErr: ErrNotFound},
		{id: "%", wantErr: ErrNotFound},
		{id: " ", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			run, err := st.Get(tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, run.RunID)
		})
	}
}

func TestStore_RunsAndPrevious(t *testing.T) {
	st := openTestStore(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 3 {
		id := fmt.Sprintf("00000000-0000-4000-8000-00000000000%d", i+1)
		_, err := st.Save(newReport(t, id, start.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	other := report.New(uuid.MustParse("00000000-0000-4000-8000-0000000000ff"), "https://staging.pnncle.com", start.Add(5*time.Hour))
	_, err := st.Save(other)
	require.NoError(t, err)

	runs, err := st.Runs(base, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "00000000-0000-4000-8000-000000000003", runs[0].RunID)
	assert.Equal(t, start.Add(2*time.Hour), runs[0].Started())
	assert.Empty(t, runs[0].Pages, "listing does not load pages")

	all, err := st.Runs("", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://staging.pnncle.com", all[0].BaseURL)

	latest, err := st.Get(runs[0].RunID)
	require.NoError(t, err)
	prev, err := st.Previous(latest)
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-4000-8000-000000000002", prev.RunID)
	assert.Len(t, prev.Pages, 2)

	first, err := st.Get("00000000-0000-4000-8000-000000000001")
	require.NoError(t, err)
	_, err = st.Previous(first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteAndPrune(t *testing.T) {
	st := openTestStore(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 4 {
		id := fmt.Sprintf("00000000-0000-4000-8000-00000000000%d", i+1)
		_, err := st.Save(newReport(t, id, start.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	require.NoError(t, st.Delete("00000000-0000-4000-8000-000000000004"))
	assert.ErrorIs(t, st.Delete("00000000-0000-4000-8000-000000000004"), ErrNotFound)

	n, err := st.Prune(base, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = st.Prune(base, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	runs, err := st.Runs(base, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "00000000-0000-4000-8000-000000000003", runs[0].RunID)

	var pages, findings, checks int64
	require.NoError(t, st.db.Model(&Page{}).Count(&pages).Error)
	require.NoError(t, st.db.Model(&Finding{}).Count(&findings).Error)
	require.NoError(t, st.db.Model(&Check{}).Count(&checks).Error)
	assert.Equal(t, int64(2), pages)
	assert.Equal(t, int64(2), findings)
	assert.Equal(t, int64(4), checks)
}

func TestStore_SaveDuplicateRun(t *testing.T) {
	st := openTestStore(t)
	r := newReport(t, "7b0c3a52-58e4-4c1e-9f0a-3c2d6a1e9b11", time.Now().UTC())
	_, err := st.Save(r)
	require.NoError(t, err)
	_, err = st.Save(r)
	assert.Error(t, err)
}

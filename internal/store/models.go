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
	"time"

	"github.com/agentberlin/sitecheck"
)

// Run is one recorded content or forms run. The counters mirror the report
// summary so runs can be listed without loading their pages.
type Run struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   string `gorm:"uniqueIndex;not null"`
	BaseURL string `gorm:"index;not null"`
	// StartedAt and FinishedAt are Unix milliseconds; FinishedAt is 0 for an unfinished run
	StartedAt  int64 `gorm:"index"`
	FinishedAt int64
	// Targets is empty when the run did no content scan
	Targets sitecheck.Outcome `gorm:"embedded;embeddedPrefix:targets_"`

	PagesScanned int
	PagesSkipped int
	Spelling     int
	Grammar      int
	FormsOK      int
	FormsSkipped int
	Failed       int

	Pages  []Page  `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	Checks []Check `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`

	CreatedAt int64 `gorm:"autoCreateTime"`
}

// Started returns StartedAt as a time in UTC.
func (r *Run) Started() time.Time {
	return time.UnixMilli(r.StartedAt).UTC()
}

// Page is one scanned page of a run.
type Page struct {
	ID       uint `gorm:"primaryKey"`
	RunID    uint `gorm:"index;not null"`
	Position int
	URL      string            `gorm:"not null"`
	Outcome  sitecheck.Outcome `gorm:"embedded"`
	Findings []Finding         `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

// Finding is one spelling or grammar finding on a page.
type Finding struct {
	ID            uint `gorm:"primaryKey"`
	PageID        uint `gorm:"index;not null"`
	Position      int
	Kind          sitecheck.FindingKind `gorm:"index"`
	Paragraph     int
	Word          string
	Message       string
	Rule          string
	Before        string
	After         string
	ParagraphText string `gorm:"type:text"`
	// Suggestions is a JSON array
	Suggestions string `gorm:"type:text"`
}

// Check kinds
const (
	CheckForm          = "form"
	CheckAccessibility = "accessibility"
)

// Check is a form submission or a structural form check of a run.
type Check struct {
	ID       uint `gorm:"primaryKey"`
	RunID    uint `gorm:"index;not null"`
	Position int
	Kind     string `gorm:"index"`
	Page     string
	Outcome  sitecheck.Outcome `gorm:"embedded"`
	// Filled is a JSON array of field roles
	Filled string `gorm:"type:text"`
}

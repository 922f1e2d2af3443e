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
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/agentberlin/sitecheck/internal/report"
)

// Save records a finished report.
func (s *Store) Save(r *report.Report) (*Run, error) {
	run, err := newRun(r)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to save run %s: %w", r.RunID, err)
	}
	return run, nil
}

// Runs lists runs newest first without their pages and checks. An empty
// baseURL lists every site; a limit of 0 lists all runs.
func (s *Store) Runs(baseURL string, limit int) ([]Run, error) {
	q := s.db.Order("started_at DESC, id DESC")
	if baseURL != "" {
		q = q.Where("base_url = ?", baseURL)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Get loads a run with its pages, findings and checks. id may be a unique
// prefix of the run ID.
func (s *Store) Get(id string) (*Run, error) {
	pk, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return s.load(pk)
}

// Previous loads the run of the same site recorded before run.
func (s *Store) Previous(run *Run) (*Run, error) {
	var prev Run
	err := s.db.
		Where("base_url = ?", run.BaseURL).
		Where("(started_at < ? OR (started_at = ? AND id < ?))", run.StartedAt, run.StartedAt, run.ID).
		Order("started_at DESC, id DESC").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find previous run: %w", err)
	}
	return s.load(prev.ID)
}

// Delete removes a run and everything recorded with it.
func (s *Store) Delete(id string) error {
	pk, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteRuns(tx, []uint{pk})
	})
}

// Prune keeps the newest keep runs of baseURL and deletes the rest. It
// returns the number of runs deleted. keep <= 0 deletes nothing.
func (s *Store) Prune(baseURL string, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	var ids []uint
	err := s.db.Model(&Run{}).
		Where("base_url = ?", baseURL).
		Order("started_at DESC, id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(ids) <= keep {
		return 0, nil
	}
	stale := ids[keep:]
	if err := s.db.Transaction(func(tx *gorm.DB) error { return deleteRuns(tx, stale) }); err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (s *Store) resolve(id string) (uint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, ErrNotFound
	}
	q := s.db.Model(&Run{})
	if strings.ContainsAny(id, "%_") {
		q = q.Where("run_id = ?", id)
	} else {
		q = q.Where("(run_id = ? OR run_id LIKE ?)", id, id+"%")
	}
	var runs []Run
	if err := q.Select("id", "run_id").Limit(2).Find(&runs).Error; err != nil {
		return 0, fmt.Errorf("failed to find run %s: %w", id, err)
	}
	switch {
	case len(runs) == 0:
		return 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(runs) > 1:
		for _, r := range runs {
			if r.RunID == id {
				return r.ID, nil
			}
		}
		return 0, fmt.Errorf("%w: %s", ErrAmbiguous, id)
	}
	return runs[0].ID, nil
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (s *Store) load(pk uint) (*Run, error) {
	var run Run
	err := s.db.
		Preload("Pages", byPosition).
		Preload("Pages.Findings", byPosition).
		Preload("Checks", byPosition).
		First(&run, pk).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &run, nil
}

// deleteRuns removes runs bottom-up so it does not depend on foreign key
// enforcement being enabled.
func deleteRuns(tx *gorm.DB, ids []uint) error {
	pages := tx.Model(&Page{}).Select("id").Where("run_id IN ?", ids)
	if err := tx.Where("page_id IN (?)", pages).Delete(&Finding{}).Error; err != nil {
		return fmt.Errorf("failed to delete findings: %w", err)
	}
	if err := tx.Where("run_id IN ?", ids).Delete(&Page{}).Error; err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	if err := tx.Where("run_id IN ?", ids).Delete(&Check{}).Error; err != nil {
		return fmt.Errorf("failed to delete checks: %w", err)
	}
	if err := tx.Delete(&Run{}, ids).Error; err != nil {
		return fmt.Errorf("failed to delete runs: %w", err)
	}
	return nil
}

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
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
)

// successPattern matches confirmation text shown after a submission. The short
// words need word boundaries so "consent" or "present" do not count.
var successPattern = regexp.MustCompile(`(?i)success|thank you|\bsent\b|\breceived\b|\bsubscribed\b`)

// Control is a snapshot of one input, textarea, select or button.
type Control struct {
	// Ref identifies the control for later Fill/Click/Value calls
	Ref         string `json:"ref"`
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	ID          string `json:"id"`
	Placeholder string `json:"placeholder"`
	// Text is the label of a button, empty for other controls
	Text     string `json:"text"`
	Class    string `json:"class"`
	Visible  bool   `json:"visible"`
	Disabled bool   `json:"disabled"`
	Value    string `json:"value"`
	// Form is the index of the owning form in document order, -1 for none
	Form int `json:"form"`
}

// FormInfo summarises one <form> for the structural check.
type FormInfo struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Class   string `json:"class"`
	Visible bool   `json:"visible"`
	// Inputs counts controls that take user input
	Inputs int `json:"inputs"`
	// Submits counts controls that submit the form
	Submits int `json:"submits"`
}

// ControlState is the live state of a previously snapshotted control.
type ControlState struct {
	// Present is false once the control has left the document
	Present  bool   `json:"present"`
	Visible  bool   `json:"visible"`
	Disabled bool   `json:"disabled"`
	Value    string `json:"value"`
}

// Feedback is what a page shows after a submission.
type Feedback struct {
	Text           string `json:"text"`
	SuccessElement bool   `json:"successElement"`
}

// SuccessSince reports whether the feedback signals an accepted submission
// that was not already on the page before it. Confirmation text counts only
// when it occurs more often than in before.
func (f Feedback) SuccessSince(before Feedback) bool {
	if f.SuccessElement && !before.SuccessElement {
		return true
	}
	return len(successPattern.FindAllStringIndex(f.Text, -1)) > len(successPattern.FindAllStringIndex(before.Text, -1))
}

// FormPage is a live page the form flows drive. *Tab implements it.
type FormPage interface {
	Navigate(ctx context.Context, url string) error
	Controls(ctx context.Context) ([]Control, error)
	Forms(ctx context.Context) ([]FormInfo, error)
	Fill(ctx context.Context, ref, value string) error
	Click(ctx context.Context, ref string) error
	Value(ctx context.Context, ref string) (ControlState, error)
	Feedback(ctx context.Context) (Feedback, error)
}

// FormResult is the outcome of one form submission flow.
type FormResult struct {
	Page string `json:"page"`
	Outcome
	// Filled lists the roles that were located and typed into
	Filled []FieldRole `json:"filled"`
}

// FormTester drives form pages through
// Navigate, LocateFields, Fill, Submit, AwaitFeedback and Verdict.
type FormTester struct {
	page   FormPage
	cfg    FormsConfig
	rules  map[FieldRole]FieldRule
	logger logrus.FieldLogger
}

// NewFormTester creates a FormTester using DefaultFieldRules.
func NewFormTester(page FormPage, cfg FormsConfig, logger logrus.FieldLogger) *FormTester {
	return &FormTester{
		page:   page,
		cfg:    cfg,
		rules:  DefaultFieldRules,
		logger: orDiscard(logger),
	}
}

// SetFieldRule replaces the rule used to locate a role.
func (ft *FormTester) SetFieldRule(rule FieldRule) {
	rules := make(map[FieldRole]FieldRule, len(ft.rules)+1)
	for k, v := range ft.rules {
		rules[k] = v
	}
	rules[rule.Role] = rule
	ft.rules = rules
}

// TestForm fills the fields for roles on pageURL, submits and judges the
// response. Fields that cannot be located are skipped. A page that cannot be
// loaded or has no usable submit control yields a Skipped outcome.
func (ft *FormTester) TestForm(ctx context.Context, pageURL string, roles []FieldRole) FormResult {
	result := FormResult{Page: pageURL, Filled: []FieldRole{}}
	logger := ft.logger.WithField("url", pageURL)

	if err := ft.page.Navigate(ctx, pageURL); err != nil {
		result.Outcome = Skipped(pageURL, "page could not be loaded: %v", err)
		return result
	}
	controls, err := ft.page.Controls(ctx)
	if err != nil {
		result.Outcome = Skipped(pageURL, "controls could not be read: %v", err)
		return result
	}

	// the first located field pins the form; later fields must share it
	scope := inForm(-1)
	claimed := make(map[string]bool)
	var first *Control
	for _, role := range roles {
		rule, ok := ft.rules[role]
		if !ok {
			logger.WithField("role", role).Warn("no rule for field role")
			continue
		}
		c, found := findControl(controls, rule.Matchers, scope, claimed)
		if !found {
			logger.WithField("role", role).Debug("field not found")
			continue
		}
		claimed[c.Ref] = true
		if err := ft.page.Fill(ctx, c.Ref, ft.cfg.TestData.Value(role)); err != nil {
			logger.WithField("role", role).WithError(err).Warn("fill failed")
			continue
		}
		result.Filled = append(result.Filled, role)
		if first == nil {
			first = &c
			if c.Form >= 0 {
				scope = inForm(c.Form)
			}
		}
	}

	submit, found := findControl(controls, SubmitMatchers, scope, claimed)
	if !found {
		result.Outcome = Skipped(pageURL, "no visible submit control")
		return result
	}
	before := ft.baseline(ctx, pageURL)
	if err := ft.page.Click(ctx, submit.Ref); err != nil {
		result.Outcome = Skipped(pageURL, "submit failed: %v", err)
		return result
	}

	result.Outcome = ft.verdict(ctx, pageURL, first, before, ft.cfg.SettleDelay)
	logger.WithFields(logrus.Fields{
		"status": result.Status,
		"filled": len(result.Filled),
	}).Info("form tested")
	return result
}

// baseline reads the page before submission. A failed read yields an empty
// baseline.
func (ft *FormTester) baseline(ctx context.Context, target string) Feedback {
	fb, err := ft.page.Feedback(ctx)
	if err != nil {
		ft.logger.WithField("url", target).WithError(err).Debug("baseline read failed")
		return Feedback{}
	}
	return fb
}

// verdict waits for the page to settle and then polls for a success signal
// that was not present in before. Without one, a filled control that was
// cleared or disabled also counts as an accepted submission. Errors while
// polling count as no signal.
func (ft *FormTester) verdict(ctx context.Context, target string, filled *Control, before Feedback, settle time.Duration) Outcome {
	if err := sleepContext(ctx, settle); err != nil {
		return Skipped(target, "cancelled: %v", err)
	}

	deadline := time.Now().Add(ft.cfg.FeedbackTimeout)
	for {
		fb, err := ft.page.Feedback(ctx)
		if err == nil && fb.SuccessSince(before) {
			return OK(target)
		}
		if err != nil {
			ft.logger.WithField("url", target).WithError(err).Debug("feedback poll failed")
		}
		if !time.Now().Before(deadline) {
			break
		}
		wait := min(ft.cfg.PollInterval, time.Until(deadline))
		if err := sleepContext(ctx, wait); err != nil {
			return Skipped(target, "cancelled: %v", err)
		}
	}

	if filled != nil {
		state, err := ft.page.Value(ctx, filled.Ref)
		if err == nil && state.Present && state.Visible && (state.Value == "" || state.Disabled) {
			return OK(target)
		}
	}
	return Skipped(target, "submission completed but no success signal found")
}

// AssertFormsAccessible checks that every visible form on each page has at
// least one input and one submit control. Violations are StatusFailed; pages
// that cannot be loaded are StatusSkipped.
func (ft *FormTester) AssertFormsAccessible(ctx context.Context, pages []string) []Outcome {
	outcomes := []Outcome{}
	for _, pageURL := range pages {
		if err := ft.page.Navigate(ctx, pageURL); err != nil {
			outcomes = append(outcomes, Skipped(pageURL, "page could not be loaded: %v", err))
			continue
		}
		forms, err := ft.page.Forms(ctx)
		if err != nil {
			outcomes = append(outcomes, Skipped(pageURL, "forms could not be read: %v", err))
			continue
		}

		checked := 0
		for _, f := range forms {
			if !f.Visible {
				continue
			}
			checked++
			target := fmt.Sprintf("%s form %d", pageURL, f.Index+1)
			switch {
			case f.Inputs == 0:
				outcomes = append(outcomes, Failed(target, "form %d on %s has no input fields", f.Index+1, pageURL))
			case f.Submits == 0:
				outcomes = append(outcomes, Failed(target, "form %d on %s has no submit button", f.Index+1, pageURL))
			default:
				outcomes = append(outcomes, OK(target))
			}
		}
		if checked == 0 {
			outcomes = append(outcomes, OK(pageURL))
		}
		ft.logger.WithFields(logrus.Fields{
			"url":   pageURL,
			"forms": checked,
		}).Debug("forms checked")
	}
	return outcomes
}

// TestNewsletters submits every visible email signup on pageURL with the test
// email address. The page is reloaded before each signup after the first.
func (ft *FormTester) TestNewsletters(ctx context.Context, pageURL string) []FormResult {
	results := []FormResult{}

	count := -1
	for i := 0; count < 0 || i < count; i++ {
		target := fmt.Sprintf("%s newsletter %d", pageURL, i+1)
		result := FormResult{Page: pageURL, Filled: []FieldRole{}}

		if err := ft.page.Navigate(ctx, pageURL); err != nil {
			result.Outcome = Skipped(target, "page could not be loaded: %v", err)
			return append(results, result)
		}
		controls, err := ft.page.Controls(ctx)
		if err != nil {
			result.Outcome = Skipped(target, "controls could not be read: %v", err)
			return append(results, result)
		}

		emails := newsletterInputs(controls)
		if count < 0 {
			count = len(emails)
			if count == 0 {
				result.Outcome = Skipped(pageURL, "no newsletter signup found")
				return append(results, result)
			}
		}
		if i >= len(emails) {
			result.Outcome = Skipped(target, "signup no longer present after reload")
			results = append(results, result)
			continue
		}
		email := emails[i]

		if err := ft.page.Fill(ctx, email.Ref, ft.cfg.TestData.Email); err != nil {
			result.Outcome = Skipped(target, "fill failed: %v", err)
			results = append(results, result)
			continue
		}
		result.Filled = append(result.Filled, RoleEmail)

		claimed := map[string]bool{email.Ref: true}
		submit, found := findControl(controls, NewsletterSubmitMatchers, inForm(email.Form), claimed)
		if !found {
			result.Outcome = Skipped(target, "no visible submit control")
			results = append(results, result)
			continue
		}
		before := ft.baseline(ctx, target)
		if err := ft.page.Click(ctx, submit.Ref); err != nil {
			result.Outcome = Skipped(target, "submit failed: %v", err)
			results = append(results, result)
			continue
		}

		result.Outcome = ft.verdict(ctx, target, &email, before, ft.cfg.NewsletterSettleDelay)
		results = append(results, result)
	}
	return results
}

func newsletterInputs(controls []Control) []Control {
	var out []Control
	for _, c := range controls {
		if usable(c) && InputType("email")(c) {
			out = append(out, c)
		}
	}
	return out
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

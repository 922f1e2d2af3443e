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
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/agentberlin/sitecheck"
)

type formsFlags struct {
	pages             []string
	skipNewsletter    bool
	skipAccessibility bool
}

func newFormsCmd(a *app) *cobra.Command {
	var flags formsFlags

	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Submit the contact forms and newsletter signups",
		Long: `Fill every configured form page with the test data, submit it and look for a
success signal, then submit each newsletter signup and check that every visible
form has an input and a submit control.

Submissions without a success signal are reported as skipped. A form without
inputs or without a submit control fails the run with exit status 2.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForms(cmd, a, flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.pages, "page", nil, "only test these configured form paths (repeatable)")
	cmd.Flags().BoolVar(&flags.skipNewsletter, "skip-newsletter", false, "do not submit newsletter signups")
	cmd.Flags().BoolVar(&flags.skipAccessibility, "skip-structure", false, "do not check form structure")
	return cmd
}

func runForms(cmd *cobra.Command, a *app, flags formsFlags) error {
	ctx := cmd.Context()

	pages, err := selectFormPages(a.cfg.Forms.Pages, flags.pages)
	if err != nil {
		return err
	}

	tab, release, err := a.tab()
	if err != nil {
		return err
	}
	defer release()

	tester := sitecheck.NewFormTester(tab, a.cfg.Forms, a.logger)
	r := a.newReport()

	for _, p := range pages {
		if ctx.Err() != nil {
			break
		}
		r.Forms = append(r.Forms, tester.TestForm(ctx, a.cfg.URL(p.Path), p.Fields))
	}
	if !flags.skipNewsletter && a.cfg.Forms.NewsletterPage != "" && ctx.Err() == nil {
		r.Forms = append(r.Forms, tester.TestNewsletters(ctx, a.cfg.URL(a.cfg.Forms.NewsletterPage))...)
	}
	if !flags.skipAccessibility && ctx.Err() == nil {
		urls := make([]string, 0, len(a.cfg.Forms.AccessibilityPages))
		for _, p := range a.cfg.Forms.AccessibilityPages {
			urls = append(urls, a.cfg.URL(p))
		}
		r.Accessibility = tester.AssertFormsAccessible(ctx, urls)
	}

	if err := a.writeReport(cmd, r); err != nil {
		return err
	}
	if r.Failed() {
		return errChecksFailed
	}
	return nil
}

// selectFormPages keeps the configured pages named by paths, in config order.
// No paths selects every page.
func selectFormPages(configured []sitecheck.FormPageConfig, paths []string) ([]sitecheck.FormPageConfig, error) {
	if len(paths) == 0 {
		return configured, nil
	}
	var out []sitecheck.FormPageConfig
	for _, p := range configured {
		if slices.Contains(paths, p.Path) {
			out = append(out, p)
		}
	}
	for _, want := range paths {
		if !slices.ContainsFunc(configured, func(p sitecheck.FormPageConfig) bool { return p.Path == want }) {
			return nil, fmt.Errorf("form page %s is not configured", want)
		}
	}
	return out, nil
}

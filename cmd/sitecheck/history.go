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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/agentberlin/sitecheck/internal/report"
	"github.com/agentberlin/sitecheck/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show and prune recorded runs",
		Long: `Runs are recorded when history is enabled in the config or a command is run
with --save. Commands that take a RUN accept any unique prefix of its ID.`,
	}
	cmd.AddCommand(newHistoryListCmd(a))
	cmd.AddCommand(newHistoryShowCmd(a))
	cmd.AddCommand(newHistoryDeleteCmd(a))
	cmd.AddCommand(newHistoryPruneCmd(a))
	return cmd
}

// withStore opens the history database for the duration of f.
func (a *app) withStore(f func(st *store.Store) error) error {
	st, err := store.Open(a.cfg.History.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	return f(st)
}

func newHistoryListCmd(a *app) *cobra.Command {
	var (
		limit    int
		allSites bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			site := a.cfg.BaseURL
			if allSites {
				site = ""
			}
			return a.withStore(func(st *store.Store) error {
				runs, err := st.Runs(site, limit)
				if err != nil {
					return err
				}
				if a.format == report.FormatJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(runs)
				}
				return writeRuns(cmd.OutOrStdout(), runs, allSites)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list, 0 lists all")
	cmd.Flags().BoolVar(&allSites, "all-sites", false, "list runs of every base URL")
	return cmd
}

func writeRuns(w io.Writer, runs []store.Run, withSite bool) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded")
		return err
	}
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleRounded)
	header := table.Row{"Run", "Started"}
	if withSite {
		header = append(header, "Site")
	}
	tbl.AppendHeader(append(header, "Pages", "Spelling", "Grammar", "Forms OK", "Failed"))
	for _, r := range runs {
		row := table.Row{shortID(r.RunID), r.Started().Local().Format("2006-01-02 15:04")}
		if withSite {
			row = append(row, r.BaseURL)
		}
		pages := strconv.Itoa(r.PagesScanned) + "/" + strconv.Itoa(r.PagesScanned+r.PagesSkipped)
		tbl.AppendRow(append(row, pages, r.Spelling, r.Grammar, r.FormsOK, r.Failed))
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var diff bool
	cmd := &cobra.Command{
		Use:   "show RUN",
		Short: "Render a recorded run as a report",
		Long: `Render a recorded run in the selected --format. With --diff, print the
findings that appeared or went away since the previous run of the same site.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				run, err := st.Get(args[0])
				if err != nil {
					return err
				}
				r, err := run.Report()
				if err != nil {
					return err
				}
				if !diff {
					return a.render(cmd, r)
				}

				prev, err := st.Previous(run)
				if err != nil {
					return fmt.Errorf("no run to compare with: %w", err)
				}
				pr, err := prev.Report()
				if err != nil {
					return err
				}
				return writeChanges(cmd.OutOrStdout(), a.format, pr, report.Diff(pr, r))
			})
		},
	}
	cmd.Flags().BoolVar(&diff, "diff", false, "compare with the previous run of the same site")
	return cmd
}

func writeChanges(w io.Writer, format report.Format, prev *report.Report, c report.Changes) error {
	if format == report.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(c)
	}
	return c.Write(w, shortID(prev.RunID))
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete RUN",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(st *store.Store) error {
				if err := st.Delete(args[0]); err != nil {
					return err
				}
				a.logger.WithField("id", args[0]).Info("Run deleted")
				return nil
			})
		},
	}
}

func newHistoryPruneCmd(a *app) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs of the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = a.cfg.History.Keep
			}
			if keep < 1 {
				return errors.New("--keep must be at least 1")
			}
			return a.withStore(func(st *store.Store) error {
				n, err := st.Prune(a.cfg.BaseURL, keep)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs\n", n)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "number of runs to keep (default from config)")
	return cmd
}

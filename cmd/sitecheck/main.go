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

// sitecheck CLI
//
// Command-line interface for the site checks: sitemap resolution, link
// discovery, spelling and grammar scans, and form submission tests.
//
// Usage:
//
//	sitecheck <command> [flags]
//
// Commands:
//
//	sitemap   Print every page listed by the sitemap index
//	discover  Find pages by following links from the home page
//	content   Scan pages for spelling and grammar errors
//	forms     Submit the contact forms and newsletter signups
//	history   List, show and prune recorded runs
//	mcp       Serve the checks as MCP tools over stdio or HTTP
//	version   Show version information
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errChecksFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

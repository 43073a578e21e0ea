/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carverauto/hostsync/pkg/cli"
	"github.com/carverauto/hostsync/pkg/report"
)

func (a *app) newReportCmd() *cobra.Command {
	var (
		format string
		cutoff string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print OS, platform and age distributions of the stored hosts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			at := report.DefaultCutoff(time.Now())

			if cutoff != "" {
				t, err := time.Parse(time.RFC3339, cutoff)
				if err != nil {
					return fmt.Errorf("--cutoff: %w", err)
				}

				at = t.UTC()
			}

			store, closeStore, err := openStore(ctx, &a.cfg.Store, a.log)
			if err != nil {
				return err
			}
			defer closeStore()

			summary, err := report.Summarize(ctx, store, at)
			if err != nil {
				return err
			}

			return cli.RenderReport(cmd.OutOrStdout(), summary, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", cli.FormatTable, "output format: table or json")
	cmd.Flags().StringVar(&cutoff, "cutoff", "", "RFC 3339 instant splitting old from new hosts (default 30 days ago)")

	return cmd
}

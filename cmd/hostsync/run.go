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
	"time"

	"github.com/spf13/cobra"

	"github.com/carverauto/hostsync/pkg/cli"
	"github.com/carverauto/hostsync/pkg/merge"
	"github.com/carverauto/hostsync/pkg/natsutil"
	"github.com/carverauto/hostsync/pkg/reconcile"
	"github.com/carverauto/hostsync/pkg/report"
	"github.com/carverauto/hostsync/pkg/sync"
)

func (a *app) newRunCmd() *cobra.Command {
	var (
		dedup      bool
		format     string
		withReport bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch every configured source and reconcile it into the host store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx, &a.cfg.Store, a.log)
			if err != nil {
				return err
			}
			defer closeStore()

			var opts []reconcile.Option

			if dedup || a.cfg.DedupSources {
				opts = append(opts, reconcile.WithMergeOptions(merge.WithDedupSources()))
			}

			if a.cfg.NATS != nil {
				publisher, nc, err := natsutil.Connect(ctx, a.cfg.NATS, a.log)
				if err != nil {
					return err
				}
				defer nc.Close()

				opts = append(opts, reconcile.WithPublisher(publisher))
			}

			reconciler := reconcile.New(store, a.log, opts...)

			svc, err := sync.NewService(a.cfg, sync.NewSources(a.cfg, nil, a.log), reconciler, a.log)
			if err != nil {
				return err
			}

			result, runErr := svc.Run(ctx)
			if result != nil {
				if err := cli.RenderRun(cmd.OutOrStdout(), result, a.cfg.SourceNames(), format); err != nil {
					return err
				}
			}

			if runErr != nil {
				return runErr
			}

			if !withReport {
				return nil
			}

			summary, err := report.Summarize(ctx, store, report.DefaultCutoff(time.Now()))
			if err != nil {
				return err
			}

			return cli.RenderReport(cmd.OutOrStdout(), summary, format)
		},
	}

	cmd.Flags().BoolVar(&dedup, "dedup-sources", false, "keep each source tag once in merged records")
	cmd.Flags().StringVarP(&format, "format", "o", cli.FormatTable, "output format: table or json")
	cmd.Flags().BoolVar(&withReport, "report", false, "print the inventory report after reconciling")

	return cmd
}

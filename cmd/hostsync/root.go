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
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/carverauto/hostsync/pkg/config"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/sync"
)

type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg *sync.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "hostsync",
		Short: "Consolidate host inventories into one deduplicated store",
		Long: `hostsync pulls host assets from Qualys and CrowdStrike, merges records
that describe the same machine, and reports on the resulting inventory.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "hostsync.yaml", "path to a JSON or YAML config file")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the config, if present")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(a.newRunCmd(), a.newReportCmd())

	return root
}

// setup loads the dotenv file, the config and the logger, in that order, so
// the environment can override file values.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	bootLog := logger.NewTestLogger()

	var cfg sync.Config
	if err := config.NewConfig(bootLog).LoadAndValidate(cmd.Context(), a.configPath, &cfg); err != nil {
		return err
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = logger.DefaultConfig()
	}

	if a.logLevel != "" {
		logCfg.Level = a.logLevel
		logCfg.Debug = false
	}

	if err := logger.Init(logCfg); err != nil {
		return err
	}

	a.cfg = &cfg
	a.log = logger.Global()

	return nil
}

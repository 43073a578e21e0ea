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

package sync

import (
	"fmt"
	"sort"
	"time"

	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
)

const (
	defaultFetchTimeout = 2 * time.Minute
	defaultStoreTimeout = 5 * time.Minute
)

// sourceRank orders batches inside one run.
//
//nolint:gochecknoglobals // fixed ordering table
var sourceRank = map[string]int{
	models.SourceQualys:      0,
	models.SourceCrowdStrike: 1,
}

type Config struct {
	Sources      map[string]*models.SourceConfig `json:"sources" yaml:"sources"` // e.g., "qualys": {...}, "crowdstrike": {...}
	Store        models.DatabaseConfig           `json:"store" yaml:"store"`
	NATS         *models.NATSConfig              `json:"nats,omitempty" yaml:"nats,omitempty"`
	Logging      *logger.Config                  `json:"logging,omitempty" yaml:"logging,omitempty"`
	FetchTimeout models.Duration                 `json:"fetch_timeout" yaml:"fetch_timeout"`
	StoreTimeout models.Duration                 `json:"store_timeout" yaml:"store_timeout"`
	DedupSources bool                            `json:"dedup_sources" yaml:"dedup_sources"`
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errNoSources
	}

	for name, src := range c.Sources {
		if src == nil {
			return fmt.Errorf("source %s: %w", name, errNilSource)
		}

		if src.Type == "" {
			src.Type = name
		}

		if _, ok := sourceRank[src.Type]; !ok {
			return fmt.Errorf("source %s: %w: %q", name, errUnsupportedSource, src.Type)
		}

		if src.Skip < 0 || src.PageSize < 0 || src.MaxPages < 0 {
			return fmt.Errorf("source %s: %w", name, errNegativePagination)
		}
	}

	if c.FetchTimeout < 0 || c.StoreTimeout < 0 {
		return errNegativeTimeout
	}

	if c.FetchTimeout == 0 {
		c.FetchTimeout = models.Duration(defaultFetchTimeout)
	}

	if c.StoreTimeout == 0 {
		c.StoreTimeout = models.Duration(defaultStoreTimeout)
	}

	switch c.Store.Type {
	case "":
		c.Store.Type = models.StoreMemory
	case models.StoreMemory:
	case models.StorePostgres:
		if c.Store.URL == "" && c.Store.Host == "" {
			return errStoreHostRequired
		}
	default:
		return fmt.Errorf("%w: %q", errUnsupportedStore, c.Store.Type)
	}

	if c.NATS != nil {
		if err := c.NATS.Validate(); err != nil {
			return fmt.Errorf("nats: %w", err)
		}
	}

	return nil
}

// SourceNames returns the configured source keys in batch order: qualys, then
// crowdstrike. Sources of the same type keep name order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		ri, rj := c.rank(names[i]), c.rank(names[j])
		if ri != rj {
			return ri < rj
		}

		return names[i] < names[j]
	})

	return names
}

func (c *Config) rank(name string) int {
	src := c.Sources[name]

	typ := name
	if src != nil && src.Type != "" {
		typ = src.Type
	}

	if r, ok := sourceRank[typ]; ok {
		return r
	}

	return len(sourceRank)
}

const (
	EnvAPIKey      = "HOSTSYNC_API_KEY"
	EnvDatabaseURL = "HOSTSYNC_DATABASE_URL"
)

// ApplyEnv lets the environment override secrets from the file. The API key
// applies to every configured source; a database URL also selects the
// postgres store unless a store type was set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if key, ok := lookup(EnvAPIKey); ok && key != "" {
		for _, src := range c.Sources {
			if src == nil {
				continue
			}

			if src.Credentials == nil {
				src.Credentials = make(map[string]string, 1)
			}

			src.Credentials["api_key"] = key
		}
	}

	if url, ok := lookup(EnvDatabaseURL); ok && url != "" {
		c.Store.URL = url

		if c.Store.Type == "" {
			c.Store.Type = models.StorePostgres
		}
	}
}

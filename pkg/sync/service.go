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

// Package sync runs one pull of every configured inventory source into the
// host store.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
	"github.com/carverauto/hostsync/pkg/normalize"
	"github.com/carverauto/hostsync/pkg/reconcile"
	"github.com/carverauto/hostsync/pkg/sync/integrations"
	"github.com/carverauto/hostsync/pkg/sync/integrations/crowdstrike"
	"github.com/carverauto/hostsync/pkg/sync/integrations/qualys"
)

// Source pairs a configured source name with the fetcher that serves it.
type Source struct {
	Name    string
	Fetcher integrations.Fetcher
}

// SourceResult is what one source contributed to a run.
type SourceResult struct {
	Fetched    int    `json:"fetched"`
	Normalized int    `json:"normalized"`
	Rejected   int    `json:"rejected"`
	Error      string `json:"error,omitempty"`
}

// RunResult summarizes one Run.
type RunResult struct {
	Sources  map[string]SourceResult    `json:"sources"`
	Breakers map[string]BreakerSnapshot `json:"breakers"`
	Stats    reconcile.Stats            `json:"stats"`
	Duration time.Duration              `json:"duration"`
}

// Service fetches, normalizes and reconciles.
type Service struct {
	config     *Config
	sources    []Source
	breakers   map[string]*CircuitBreaker
	normalizer *normalize.Normalizer
	reconciler *reconcile.Reconciler
	logger     logger.Logger
}

// NewSources builds a fetcher per configured source, in batch order. A nil
// httpClient lets each fetcher build its own from the source config.
func NewSources(config *Config, httpClient integrations.HTTPClient, log logger.Logger) []Source {
	names := config.SourceNames()
	out := make([]Source, 0, len(names))

	for _, name := range names {
		src := config.Sources[name]

		var f integrations.Fetcher

		switch src.Type {
		case qualys.Source:
			f = qualys.New(src, httpClient, log)
		case crowdstrike.Source:
			f = crowdstrike.New(src, httpClient, log)
		default:
			continue
		}

		out = append(out, Source{Name: name, Fetcher: f})
	}

	return out
}

// NewService wires a Service. Sources are fetched concurrently but their
// batches are reconciled in the order given.
func NewService(config *Config, sources []Source, reconciler *reconcile.Reconciler, log logger.Logger) (*Service, error) {
	if reconciler == nil {
		return nil, errNilReconciler
	}

	if config == nil {
		config = &Config{}
	}

	if log == nil {
		log = logger.Global()
	}

	log = log.WithComponent("sync")

	breakers := make(map[string]*CircuitBreaker, len(sources))

	for _, s := range sources {
		if _, dup := breakers[s.Name]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateFetcher, s.Name)
		}

		breakers[s.Name] = NewCircuitBreaker(s.Name, DefaultCircuitBreakerConfig(), log)
	}

	return &Service{
		config:     config,
		sources:    sources,
		breakers:   breakers,
		normalizer: normalize.New(log),
		reconciler: reconciler,
		logger:     log,
	}, nil
}

// Run performs one pull. A source that cannot be fetched is logged and
// contributes nothing; records that fail to normalize are dropped. Store
// failures end the run and are returned along with the partial result.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	raws := make([][]json.RawMessage, len(s.sources))
	errs := make([]error, len(s.sources))

	// No shared cancellation: one failing source must not abort the others.
	var g errgroup.Group

	for i, src := range s.sources {
		g.Go(func() error {
			raws[i], errs[i] = s.fetch(ctx, src)

			return nil
		})
	}

	_ = g.Wait()

	result := &RunResult{
		Sources:  make(map[string]SourceResult, len(s.sources)),
		Breakers: make(map[string]BreakerSnapshot, len(s.sources)),
	}

	for _, src := range s.sources {
		result.Breakers[src.Name] = s.breakers[src.Name].Snapshot()
	}

	var batch []*models.HostRecord

	for i, src := range s.sources {
		if errs[i] != nil {
			s.logger.Error().
				Err(errs[i]).
				Str("source", src.Name).
				Str("event", "SourceFetchFailed").
				Msg("Source fetch failed, continuing without it")

			result.Sources[src.Name] = SourceResult{Error: errs[i].Error()}

			continue
		}

		records, err := s.normalizer.NormalizeBatch(src.Fetcher.Source(), raws[i])
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("source", src.Name).
				Int("rejected", len(raws[i])-len(records)).
				Msg("Dropped records that failed to normalize")
		}

		result.Sources[src.Name] = SourceResult{
			Fetched:    len(raws[i]),
			Normalized: len(records),
			Rejected:   len(raws[i]) - len(records),
		}

		batch = append(batch, records...)
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.config.StoreTimeout.Or(defaultStoreTimeout))
	defer cancel()

	err := s.reconciler.Reconcile(storeCtx, batch)
	result.Stats = s.reconciler.LastStats()
	result.Duration = time.Since(start)

	if err != nil {
		return result, err
	}

	s.logger.Info().
		Int("records", len(batch)).
		Int("inserted", result.Stats.Inserted).
		Int("merged", result.Stats.Merged).
		Dur("duration", result.Duration).
		Msg("Sync run completed")

	return result, nil
}

func (s *Service) fetch(ctx context.Context, src Source) ([]json.RawMessage, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout.Or(defaultFetchTimeout))
	defer cancel()

	var out []json.RawMessage

	err := s.breakers[src.Name].Execute(fetchCtx, func() error {
		var err error

		out, err = src.Fetcher.Fetch(fetchCtx)

		return err
	})

	recordFetch(ctx, src.Name, len(out), err)

	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceFetchFailed, src.Name, err)
	}

	s.logger.Debug().
		Str("source", src.Name).
		Int("records", len(out)).
		Msg("Fetched source")

	return out, nil
}

// Breaker returns the circuit breaker guarding the named source.
func (s *Service) Breaker(name string) *CircuitBreaker {
	return s.breakers[name]
}

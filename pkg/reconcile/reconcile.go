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

// Package reconcile folds a batch of normalized host records into the store,
// one record at a time.
package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/hostsync/pkg/dates"
	"github.com/carverauto/hostsync/pkg/db"
	"github.com/carverauto/hostsync/pkg/identity"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/merge"
	"github.com/carverauto/hostsync/pkg/models"
)

// Stats counts what the last batch did.
type Stats struct {
	Inserted int `json:"inserted"`
	Merged   int `json:"merged"`
	Skipped  int `json:"skipped"`
}

// Reconciler matches each incoming record against the store and either merges
// it into the canonical record or inserts it.
type Reconciler struct {
	store     db.Store
	resolver  *identity.Resolver
	publisher EventPublisher
	logger    logger.Logger
	mergeOpts []merge.Option
	now       func() time.Time

	running atomic.Bool

	mu        sync.Mutex
	lastStats Stats
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPublisher sends a HostEvent after every successful write.
func WithPublisher(p EventPublisher) Option {
	return func(r *Reconciler) {
		r.publisher = p
	}
}

// WithMergeOptions passes options through to merge.Merge.
func WithMergeOptions(opts ...merge.Option) Option {
	return func(r *Reconciler) {
		r.mergeOpts = append(r.mergeOpts, opts...)
	}
}

// New returns a Reconciler writing through store.
func New(store db.Store, log logger.Logger, opts ...Option) *Reconciler {
	if log == nil {
		log = logger.Global()
	}

	log = log.WithComponent("reconcile")

	r := &Reconciler{
		store:    store,
		resolver: identity.NewResolver(store, log),
		logger:   log,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Reconcile processes batch strictly in order. Each record gets its own lookup
// and write, so a later record sees the writes of earlier ones. The first store
// failure stops the batch and is returned as a *RecordError; records before it
// stay written. Nil records are skipped.
func (r *Reconciler) Reconcile(ctx context.Context, batch []*models.HostRecord) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrReconcileInProgress
	}
	defer r.running.Store(false)

	var stats Stats

	defer func() {
		r.mu.Lock()
		r.lastStats = stats
		r.mu.Unlock()

		recordStats(ctx, stats)
	}()

	for i, rec := range batch {
		if rec == nil {
			stats.Skipped++
			continue
		}

		kind, err := r.reconcileOne(ctx, i, rec)
		if err != nil {
			recordFailure(ctx, err.Op)

			r.logger.Error().
				Err(err.Err).
				Int("index", i).
				Interface("identity", rec.Identity()).
				Str("op", string(err.Op)).
				Msg("Reconcile stopped on store failure")

			return err
		}

		if kind == models.HostInserted {
			stats.Inserted++
		} else {
			stats.Merged++
		}
	}

	r.logger.Info().
		Int("inserted", stats.Inserted).
		Int("merged", stats.Merged).
		Int("skipped", stats.Skipped).
		Msg("Reconciled batch")

	return nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, index int, rec *models.HostRecord) (models.HostEventKind, *RecordError) {
	match, err := r.resolver.FindMatch(ctx, rec)
	if err != nil {
		return "", newRecordError(index, rec, OpLookup, err)
	}

	if match == nil {
		stored := rec.Clone()
		r.normalizeDates(stored)

		if err := r.store.Insert(ctx, stored); err != nil {
			return "", newRecordError(index, rec, OpInsert, err)
		}

		r.publish(ctx, models.HostInserted, stored, rec.Source)

		return models.HostInserted, nil
	}

	merged := merge.Merge(match, rec, r.mergeOpts...)

	if err := r.store.Replace(ctx, match.ID, merged); err != nil {
		return "", newRecordError(index, rec, OpReplace, err)
	}

	r.logger.Debug().
		Str("host_id", match.ID).
		Str("source", merged.Source).
		Msg("Merged host into canonical record")

	r.publish(ctx, models.HostMerged, merged, rec.Source)

	return models.HostMerged, nil
}

// normalizeDates stores both observation dates as UTC instants. A date that
// does not parse is dropped; the rest of the record is kept.
func (r *Reconciler) normalizeDates(rec *models.HostRecord) {
	for _, f := range []struct {
		name string
		slot *any
	}{
		{models.FieldFirstSeen, &rec.FirstSeen},
		{models.FieldLastSeen, &rec.LastSeen},
	} {
		v, err := dates.Normalize(*f.slot)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("field", f.name).
				Interface("identity", rec.Identity()).
				Msg("Dropping unparseable date")
		}

		*f.slot = v
	}
}

func (r *Reconciler) publish(ctx context.Context, kind models.HostEventKind, host *models.HostRecord, source string) {
	if r.publisher == nil {
		return
	}

	event := &models.HostEvent{
		Kind:      kind,
		HostID:    host.ID,
		Source:    source,
		Identity:  host.Identity(),
		Host:      host,
		Timestamp: r.now().UTC(),
	}

	if err := r.publisher.PublishHostEvent(ctx, event); err != nil {
		r.logger.Warn().
			Err(err).
			Str("host_id", host.ID).
			Str("kind", string(kind)).
			Msg("Failed to publish host event")
	}
}

// LastStats returns the counts of the most recent Reconcile call.
func (r *Reconciler) LastStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastStats
}

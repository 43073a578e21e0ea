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

// Package identity decides whether an incoming host record describes a host
// that already has a canonical record in the store.
package identity

import (
	"context"
	"time"

	"github.com/carverauto/hostsync/pkg/db"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
)

// Clauses returns one equality clause per identity field the candidate carries,
// in hostname, external_ip, local_ip, mac_address order. Empty strings count as
// values; there is no normalization.
func Clauses(candidate *models.HostRecord) []db.Clause {
	if candidate == nil {
		return nil
	}

	clauses := make([]db.Clause, 0, len(models.IdentityFields))

	for _, field := range models.IdentityFields {
		if v := candidate.StringField(field); v != nil {
			clauses = append(clauses, db.Clause{Field: field, Value: *v})
		}
	}

	return clauses
}

// Resolver looks up the canonical record for a candidate.
type Resolver struct {
	lookup db.Lookup
	logger logger.Logger
}

// NewResolver returns a Resolver reading through lookup.
func NewResolver(lookup db.Lookup, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Global()
	}

	return &Resolver{lookup: lookup, logger: log.WithComponent("identity")}
}

// FindMatch is shorthand for NewResolver(lookup, nil).FindMatch.
func FindMatch(ctx context.Context, candidate *models.HostRecord, lookup db.Lookup) (*models.HostRecord, error) {
	return NewResolver(lookup, nil).FindMatch(ctx, candidate)
}

// FindMatch returns the first stored record sharing at least one identity field
// value with candidate, or nil. A candidate without identity fields never
// matches and never reaches the store.
//
// When several stored records match, the lookup's first one wins. If the lookup
// can count matches, that situation is logged.
func (r *Resolver) FindMatch(ctx context.Context, candidate *models.HostRecord) (*models.HostRecord, error) {
	clauses := Clauses(candidate)
	if len(clauses) == 0 {
		return nil, nil
	}

	start := time.Now()

	match, err := r.lookup.Find(ctx, clauses)
	if err != nil {
		return nil, err
	}

	recordLookup(ctx, time.Since(start), match != nil)

	if match != nil {
		r.warnIfAmbiguous(ctx, candidate, clauses)
	}

	return match, nil
}

func (r *Resolver) warnIfAmbiguous(ctx context.Context, candidate *models.HostRecord, clauses []db.Clause) {
	counter, ok := r.lookup.(db.MatchCounter)
	if !ok {
		return
	}

	n, err := counter.CountMatches(ctx, clauses)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Unable to count identity matches")
		return
	}

	if n > 1 {
		recordAmbiguous(ctx)

		r.logger.Warn().
			Interface("identity", candidate.Identity()).
			Int("matches", n).
			Msg("Several stored hosts share an identity field; merging into the first")
	}
}

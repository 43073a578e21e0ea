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

// Package merge combines two records for the same host into one.
package merge

import (
	"strings"

	"github.com/carverauto/hostsync/pkg/dates"
	"github.com/carverauto/hostsync/pkg/models"
)

type options struct {
	dedupSources bool
}

// Option adjusts how Merge treats individual fields.
type Option func(*options)

// WithDedupSources makes the merged source list a set. By default re-merging a
// record from the same source appends the tag again.
func WithDedupSources() Option {
	return func(o *options) {
		o.dedupSources = true
	}
}

// Merge returns the union of existing and incoming. It never mutates its
// arguments and never fails; a nil side is treated as an empty record.
//
//   - first_seen, last_seen: the later instant, in UTC; a side that is absent
//     or does not parse is ignored.
//   - source: existing and incoming joined with a comma, empty segments dropped.
//   - tags: existing in order, then incoming tags not already present.
//   - every other field: incoming when it is non-null, else existing.
//
// The result keeps existing's store ID.
func Merge(existing, incoming *models.HostRecord, opts ...Option) *models.HostRecord {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if existing == nil {
		existing = &models.HostRecord{}
	}

	if incoming == nil {
		incoming = &models.HostRecord{}
	}

	merged := existing.Clone()

	if merged.ID == "" {
		merged.ID = incoming.ID
	}

	mergeStrings(merged, incoming)
	mergeExtra(merged, incoming)

	merged.FirstSeen = laterInstant(existing.FirstSeen, incoming.FirstSeen)
	merged.LastSeen = laterInstant(existing.LastSeen, incoming.LastSeen)
	merged.Source = joinSources(existing.Source, incoming.Source, o.dedupSources)
	merged.Tags = unionTags(existing.Tags, incoming.Tags)

	return merged
}

func mergeStrings(merged, incoming *models.HostRecord) {
	for _, field := range models.StringFields {
		if v := incoming.StringField(field); v != nil {
			s := *v
			merged.SetStringField(field, &s)
		}
	}
}

func mergeExtra(merged, incoming *models.HostRecord) {
	for key, v := range incoming.Extra {
		if v == nil {
			if _, ok := merged.Extra[key]; ok {
				continue
			}
		}

		if merged.Extra == nil {
			merged.Extra = make(map[string]any, len(incoming.Extra))
		}

		merged.Extra[key] = v
	}
}

func laterInstant(a, b any) any {
	if t, ok := dates.MaxInstant(a, b); ok {
		return t
	}

	return nil
}

func joinSources(existing, incoming string, dedup bool) string {
	parts := make([]string, 0, 2)

	var seen map[string]struct{}
	if dedup {
		seen = make(map[string]struct{})
	}

	for _, part := range strings.Split(existing+","+incoming, ",") {
		if part == "" {
			continue
		}

		if seen != nil {
			if _, dup := seen[part]; dup {
				continue
			}

			seen[part] = struct{}{}
		}

		parts = append(parts, part)
	}

	return strings.Join(parts, ",")
}

func unionTags(existing, incoming []string) []string {
	if existing == nil && incoming == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))

	for _, list := range [][]string{existing, incoming} {
		for _, tag := range list {
			if _, dup := seen[tag]; dup {
				continue
			}

			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}

	return out
}

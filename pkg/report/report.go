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

// Package report aggregates the canonical host records into distributions.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/carverauto/hostsync/pkg/dates"
	"github.com/carverauto/hostsync/pkg/db"
	"github.com/carverauto/hostsync/pkg/models"
)

// DefaultAge is how far back DefaultCutoff reaches.
const DefaultAge = 30 * 24 * time.Hour

// Bucket is one distinct value of the grouping field and how many hosts carry
// it. A nil Value groups hosts where the field is absent or null.
type Bucket struct {
	Value *string `json:"value"`
	Count int     `json:"count"`
}

// Age partitions hosts by last_seen relative to a cutoff. Hosts whose last_seen
// is absent or unparseable are counted in Unknown.
type Age struct {
	Older   int `json:"older"`
	Newer   int `json:"newer"`
	Unknown int `json:"unknown"`
}

// DistributionBy counts stored hosts per value of field. Buckets are ordered by
// count, highest first; ties keep the order in which each value first appears in
// the store.
func DistributionBy(ctx context.Context, reader db.Reader, field string) ([]Bucket, error) {
	hosts, err := reader.List(ctx)
	if err != nil {
		return nil, err
	}

	var (
		buckets []Bucket
		nilIdx  = -1
		index   = make(map[string]int)
	)

	for _, h := range hosts {
		v, ok := h.Value(field)
		if !ok {
			if nilIdx < 0 {
				nilIdx = len(buckets)
				buckets = append(buckets, Bucket{})
			}

			buckets[nilIdx].Count++

			continue
		}

		key := fmt.Sprint(v)

		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Value: &key})
		}

		buckets[i].Count++
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Count > buckets[j].Count
	})

	return buckets, nil
}

// OSDistribution groups hosts by os_version.
func OSDistribution(ctx context.Context, reader db.Reader) ([]Bucket, error) {
	return DistributionBy(ctx, reader, models.FieldOSVersion)
}

// PlatformDistribution groups hosts by platform.
func PlatformDistribution(ctx context.Context, reader db.Reader) ([]Bucket, error) {
	return DistributionBy(ctx, reader, models.FieldPlatform)
}

// DefaultCutoff is now minus DefaultAge.
func DefaultCutoff(now time.Time) time.Time {
	return now.UTC().Add(-DefaultAge)
}

// AgeDistribution counts hosts last seen before cutoff as Older and the rest as
// Newer.
func AgeDistribution(ctx context.Context, reader db.Reader, cutoff time.Time) (Age, error) {
	hosts, err := reader.List(ctx)
	if err != nil {
		return Age{}, err
	}

	var age Age

	for _, h := range hosts {
		if h.LastSeen == nil {
			age.Unknown++
			continue
		}

		seen, err := dates.ToInstant(h.LastSeen)
		if err != nil {
			age.Unknown++
			continue
		}

		if seen.Before(cutoff) {
			age.Older++
		} else {
			age.Newer++
		}
	}

	return age, nil
}

// Counts renders the partition under the labels downstream charts use.
func (a Age) Counts() map[string]int {
	return map[string]int{
		"old_hosts":     a.Older,
		"new_hosts":     a.Newer,
		"unknown_hosts": a.Unknown,
	}
}

// Summary is every aggregate the report command prints.
type Summary struct {
	OS       []Bucket  `json:"os"`
	Platform []Bucket  `json:"platform"`
	Age      Age       `json:"age"`
	Cutoff   time.Time `json:"cutoff"`
}

// Summarize runs the OS, platform and age aggregations against one reader.
func Summarize(ctx context.Context, reader db.Reader, cutoff time.Time) (*Summary, error) {
	osBuckets, err := OSDistribution(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("os distribution: %w", err)
	}

	platform, err := PlatformDistribution(ctx, reader)
	if err != nil {
		return nil, fmt.Errorf("platform distribution: %w", err)
	}

	age, err := AgeDistribution(ctx, reader, cutoff)
	if err != nil {
		return nil, fmt.Errorf("age distribution: %w", err)
	}

	return &Summary{OS: osBuckets, Platform: platform, Age: age, Cutoff: cutoff}, nil
}

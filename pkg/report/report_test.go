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

package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/hostsync/pkg/db"
	"github.com/carverauto/hostsync/pkg/models"
)

func seed(t *testing.T, hosts ...*models.HostRecord) *db.MemoryStore {
	t.Helper()

	store := db.NewMemoryStore()
	for _, h := range hosts {
		require.NoError(t, store.Insert(context.Background(), h))
	}

	return store
}

func values(buckets []Bucket) []string {
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.Label())
	}

	return out
}

func TestDistributionByOrdersByCountThenStoreOrder(t *testing.T) {
	store := seed(t,
		&models.HostRecord{OSVersion: models.StringPtr("Ubuntu 22.04")},
		&models.HostRecord{OSVersion: models.StringPtr("Windows 10")},
		&models.HostRecord{},
		&models.HostRecord{OSVersion: models.StringPtr("Windows 10")},
		&models.HostRecord{OSVersion: models.StringPtr("Amazon Linux 2")},
		&models.HostRecord{},
	)

	buckets, err := OSDistribution(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []string{"Windows 10", "Unknown", "Ubuntu 22.04", "Amazon Linux 2"}, values(buckets))
	assert.Equal(t, 2, buckets[0].Count)
	assert.Nil(t, buckets[1].Value)
	assert.Equal(t, 2, buckets[1].Count)
}

func TestPlatformDistribution(t *testing.T) {
	store := seed(t,
		&models.HostRecord{Platform: models.StringPtr("EC2")},
		&models.HostRecord{Platform: models.StringPtr("Azure")},
		&models.HostRecord{Platform: models.StringPtr("EC2")},
	)

	buckets, err := PlatformDistribution(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"EC2": 2, "Azure": 1}, Labels(buckets))
}

func TestDistributionByExtraField(t *testing.T) {
	store := seed(t,
		&models.HostRecord{Extra: map[string]any{"region": "eu"}},
		&models.HostRecord{Extra: map[string]any{"region": nil}},
	)

	buckets, err := DistributionBy(context.Background(), store, "region")
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "eu", *buckets[0].Value)
	assert.Nil(t, buckets[1].Value)
}

func TestDistributionByEmptyStore(t *testing.T) {
	buckets, err := OSDistribution(context.Background(), db.NewMemoryStore())
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestAgeDistributionAroundCutoff(t *testing.T) {
	store := seed(t,
		&models.HostRecord{LastSeen: "2023-12-01"},
		&models.HostRecord{LastSeen: "2024-02-01"},
	)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	age, err := AgeDistribution(context.Background(), store, cutoff)
	require.NoError(t, err)
	assert.Equal(t, Age{Older: 1, Newer: 1}, age)
}

func TestAgeDistributionBoundaryAndUnknown(t *testing.T) {
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	store := seed(t,
		&models.HostRecord{LastSeen: cutoff},
		&models.HostRecord{LastSeen: "2024-01-01T01:00:00+02:00"},
		&models.HostRecord{LastSeen: "not a date"},
		&models.HostRecord{},
	)

	age, err := AgeDistribution(context.Background(), store, cutoff)
	require.NoError(t, err)
	assert.Equal(t, Age{Older: 1, Newer: 1, Unknown: 2}, age)
	assert.Equal(t, map[string]int{"old_hosts": 1, "new_hosts": 1, "unknown_hosts": 2}, age.Counts())
}

func TestDefaultCutoff(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), DefaultCutoff(now))
}

func TestReporterPropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)

	store.EXPECT().List(gomock.Any()).Return(nil, db.ErrStoreUnavailable).Times(2)

	_, err := OSDistribution(context.Background(), store)
	assert.True(t, errors.Is(err, db.ErrStoreUnavailable))

	_, err = AgeDistribution(context.Background(), store, time.Now())
	assert.True(t, errors.Is(err, db.ErrStoreUnavailable))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	store := seed(t,
		&models.HostRecord{
			OSVersion: models.StringPtr("Ubuntu 22.04"),
			Platform:  models.StringPtr("Linux"),
			LastSeen:  now.Add(-time.Hour),
		},
		&models.HostRecord{
			OSVersion: models.StringPtr("Windows 11"),
			Platform:  models.StringPtr("Windows"),
			LastSeen:  now.Add(-60 * 24 * time.Hour),
		},
		&models.HostRecord{Platform: models.StringPtr("Linux")},
	)

	cutoff := DefaultCutoff(now)

	summary, err := Summarize(context.Background(), store, cutoff)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ubuntu 22.04", "Windows 11", "Unknown"}, values(summary.OS))
	assert.Equal(t, []string{"Linux", "Windows"}, values(summary.Platform))
	assert.Equal(t, Age{Older: 1, Newer: 1, Unknown: 1}, summary.Age)
	assert.Equal(t, cutoff, summary.Cutoff)
}

func TestSummarizeWrapsStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)

	store.EXPECT().List(gomock.Any()).Return(nil, db.ErrStoreUnavailable)

	_, err := Summarize(context.Background(), store, time.Now())
	require.ErrorIs(t, err, db.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "os distribution")
}

func TestLabels(t *testing.T) {
	long := "Microsoft Windows Server 2019 Datacenter"
	empty := ""

	got := Labels([]Bucket{
		{Value: &long, Count: 3},
		{Value: nil, Count: 2},
		{Value: &empty, Count: 1},
		{Value: models.StringPtr("exactly twenty chars"), Count: 1},
	})

	assert.Equal(t, map[string]int{
		"Microsoft Windows...": 3,
		"Unknown":              3,
		"exactly twenty chars": 1,
	}, got)
}

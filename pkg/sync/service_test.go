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
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/hostsync/pkg/db"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
	"github.com/carverauto/hostsync/pkg/reconcile"
	"github.com/carverauto/hostsync/pkg/sync/integrations"
)

var errUpstreamDown = errors.New("upstream down")

const (
	qualysHost = `{
  "dnsHostName": "web-1",
  "address": "10.0.0.5",
  "os": "Amazon Linux 2",
  "created": "2023-06-01T10:00:00Z",
  "agentInfo": {"agentId": "q-1", "platform": "Linux", "lastCheckedIn": {"$date": "2024-05-01T10:00:00Z"}},
  "networkInterface": {"list": [{"HostAssetInterface": {"macAddress": "0e:00:00:00:00:01"}}]}
}`
	crowdstrikeHost = `{
  "device_id": "cs-1",
  "hostname": "web-1",
  "local_ip": "10.0.0.5",
  "platform_name": "Linux",
  "os_version": "Amazon Linux 2023",
  "first_seen": "2023-01-01T00:00:00Z",
  "last_seen": "2024-06-01T00:00:00Z"
}`
	crowdstrikeOther = `{"device_id": "cs-2", "hostname": "db-1", "local_ip": "10.0.0.9"}`
)

func raw(docs ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, json.RawMessage(d))
	}

	return out
}

func testConfig() *Config {
	return &Config{
		Sources: map[string]*models.SourceConfig{
			models.SourceQualys:      {Type: models.SourceQualys},
			models.SourceCrowdStrike: {Type: models.SourceCrowdStrike},
		},
		FetchTimeout: models.Duration(time.Second),
		StoreTimeout: models.Duration(time.Second),
	}
}

func mockFetcher(ctrl *gomock.Controller, source string, records []json.RawMessage, err error) *integrations.MockFetcher {
	f := integrations.NewMockFetcher(ctrl)
	f.EXPECT().Source().Return(source).AnyTimes()
	f.EXPECT().Fetch(gomock.Any()).Return(records, err).AnyTimes()

	return f
}

func TestServiceRunMergesAcrossSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMemoryStore()
	log := logger.NewTestLogger()

	sources := []Source{
		{Name: models.SourceQualys, Fetcher: mockFetcher(ctrl, models.SourceQualys, raw(qualysHost), nil)},
		{Name: models.SourceCrowdStrike, Fetcher: mockFetcher(ctrl, models.SourceCrowdStrike, raw(crowdstrikeHost, crowdstrikeOther), nil)},
	}

	svc, err := NewService(testConfig(), sources, reconcile.New(store, log), log)
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, reconcile.Stats{Inserted: 2, Merged: 1}, result.Stats)
	assert.Equal(t, SourceResult{Fetched: 1, Normalized: 1}, result.Sources[models.SourceQualys])
	assert.Equal(t, SourceResult{Fetched: 2, Normalized: 2}, result.Sources[models.SourceCrowdStrike])
	assert.Equal(t, StateClosed.String(), result.Breakers[models.SourceQualys].State)

	hosts, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, hosts, 2)

	web := hosts[0]
	assert.Equal(t, "qualys,crowdstrike", web.Source)
	assert.Equal(t, "cs-1", *web.HostID)
	assert.Equal(t, "Amazon Linux 2023", *web.OSVersion)
	assert.Equal(t, "0e:00:00:00:00:01", *web.MACAddress)
	assert.Equal(t, time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC), web.FirstSeen)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), web.LastSeen)

	assert.Equal(t, "crowdstrike", hosts[1].Source)
}

func TestServiceRunContinuesWhenSourceFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMemoryStore()
	log := logger.NewTestLogger()

	sources := []Source{
		{Name: models.SourceQualys, Fetcher: mockFetcher(ctrl, models.SourceQualys, nil, errUpstreamDown)},
		{Name: models.SourceCrowdStrike, Fetcher: mockFetcher(ctrl, models.SourceCrowdStrike, raw(crowdstrikeHost), nil)},
	}

	svc, err := NewService(testConfig(), sources, reconcile.New(store, log), log)
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.Sources[models.SourceQualys].Error, "upstream down")
	assert.Equal(t, 1, result.Stats.Inserted)
	assert.Equal(t, 1, store.Len())
}

func TestServiceRunDropsMalformedRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMemoryStore()
	log := logger.NewTestLogger()

	sources := []Source{
		{Name: models.SourceCrowdStrike, Fetcher: mockFetcher(ctrl, models.SourceCrowdStrike, raw(`[1,2]`, crowdstrikeOther), nil)},
	}

	svc, err := NewService(testConfig(), sources, reconcile.New(store, log), log)
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceResult{Fetched: 2, Normalized: 1, Rejected: 1}, result.Sources[models.SourceCrowdStrike])
	assert.Equal(t, 1, store.Len())
}

func TestServiceRunPropagatesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := db.NewMockStore(ctrl)
	log := logger.NewTestLogger()

	store.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, db.ErrStoreUnavailable)

	sources := []Source{
		{Name: models.SourceCrowdStrike, Fetcher: mockFetcher(ctrl, models.SourceCrowdStrike, raw(crowdstrikeHost), nil)},
	}

	svc, err := NewService(testConfig(), sources, reconcile.New(store, log), log)
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.ErrorIs(t, err, db.ErrStoreUnavailable)

	var recErr *reconcile.RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, reconcile.OpLookup, recErr.Op)
	require.NotNil(t, result)
	assert.Equal(t, reconcile.Stats{}, result.Stats)
}

func TestServiceFetchHonorsTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logger.NewTestLogger()

	slow := integrations.NewMockFetcher(ctrl)
	slow.EXPECT().Source().Return(models.SourceQualys).AnyTimes()
	slow.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]json.RawMessage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	config := testConfig()
	config.FetchTimeout = models.Duration(20 * time.Millisecond)

	svc, err := NewService(config, []Source{{Name: models.SourceQualys, Fetcher: slow}}, reconcile.New(db.NewMemoryStore(), log), log)
	require.NoError(t, err)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.Sources[models.SourceQualys].Error, context.DeadlineExceeded.Error())
}

func TestServiceBreakerOpensAfterRepeatedFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logger.NewTestLogger()

	failing := integrations.NewMockFetcher(ctrl)
	failing.EXPECT().Source().Return(models.SourceQualys).AnyTimes()
	failing.EXPECT().Fetch(gomock.Any()).Return(nil, errUpstreamDown).
		Times(DefaultCircuitBreakerConfig().FailureThreshold)

	svc, err := NewService(testConfig(), []Source{{Name: models.SourceQualys, Fetcher: failing}}, reconcile.New(db.NewMemoryStore(), log), log)
	require.NoError(t, err)

	for i := 0; i < DefaultCircuitBreakerConfig().FailureThreshold; i++ {
		_, err := svc.Run(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, StateOpen, svc.Breaker(models.SourceQualys).GetState())

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.Sources[models.SourceQualys].Error, ErrCircuitOpen.Error())

	snap := result.Breakers[models.SourceQualys]
	assert.Equal(t, models.SourceQualys, snap.Source)
	assert.Equal(t, StateOpen.String(), snap.State)
	assert.Equal(t, DefaultCircuitBreakerConfig().FailureThreshold, snap.Failures)
}

func TestNewServiceRejectsDuplicateSources(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := logger.NewTestLogger()
	f := integrations.NewMockFetcher(ctrl)

	_, err := NewService(testConfig(), []Source{{Name: "qualys", Fetcher: f}, {Name: "qualys", Fetcher: f}}, reconcile.New(db.NewMemoryStore(), log), log)
	require.ErrorIs(t, err, errDuplicateFetcher)

	_, err = NewService(testConfig(), nil, nil, log)
	require.ErrorIs(t, err, errNilReconciler)
}

func TestNewSourcesFollowsBatchOrder(t *testing.T) {
	config := &Config{
		Sources: map[string]*models.SourceConfig{
			"falcon":  {Type: models.SourceCrowdStrike},
			"qualys":  {},
			"qualys2": {Type: models.SourceQualys},
		},
	}
	require.NoError(t, config.Validate())

	sources := NewSources(config, nil, logger.NewTestLogger())
	require.Len(t, sources, 3)

	assert.Equal(t, "qualys", sources[0].Name)
	assert.Equal(t, "qualys2", sources[1].Name)
	assert.Equal(t, "falcon", sources[2].Name)
	assert.Equal(t, models.SourceCrowdStrike, sources[2].Fetcher.Source())
}

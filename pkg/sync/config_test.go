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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/hostsync/pkg/models"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{
		Sources: map[string]*models.SourceConfig{"qualys": {}},
	}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, models.SourceQualys, cfg.Sources["qualys"].Type)
	assert.Equal(t, defaultFetchTimeout, time.Duration(cfg.FetchTimeout))
	assert.Equal(t, defaultStoreTimeout, time.Duration(cfg.StoreTimeout))
	assert.Equal(t, models.StoreMemory, cfg.Store.Type)
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{
			name: "no sources",
			cfg:  Config{},
			want: errNoSources,
		},
		{
			name: "nil source",
			cfg:  Config{Sources: map[string]*models.SourceConfig{"qualys": nil}},
			want: errNilSource,
		},
		{
			name: "unknown source type",
			cfg:  Config{Sources: map[string]*models.SourceConfig{"armis": {}}},
			want: errUnsupportedSource,
		},
		{
			name: "negative page size",
			cfg:  Config{Sources: map[string]*models.SourceConfig{"qualys": {PageSize: -1}}},
			want: errNegativePagination,
		},
		{
			name: "negative timeout",
			cfg: Config{
				Sources:      map[string]*models.SourceConfig{"qualys": {}},
				FetchTimeout: models.Duration(-time.Second),
			},
			want: errNegativeTimeout,
		},
		{
			name: "postgres without address",
			cfg: Config{
				Sources: map[string]*models.SourceConfig{"qualys": {}},
				Store:   models.DatabaseConfig{Type: models.StorePostgres},
			},
			want: errStoreHostRequired,
		},
		{
			name: "unknown store",
			cfg: Config{
				Sources: map[string]*models.SourceConfig{"qualys": {}},
				Store:   models.DatabaseConfig{Type: "mongo"},
			},
			want: errUnsupportedStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestConfigValidateNATS(t *testing.T) {
	cfg := &Config{
		Sources: map[string]*models.SourceConfig{"crowdstrike": {}},
		NATS:    &models.NATSConfig{},
	}
	require.Error(t, cfg.Validate())

	cfg.NATS.URL = "nats://127.0.0.1:4222"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "HOSTS", cfg.NATS.Stream)
}

func TestConfigApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAPIKey:      "secret",
		EnvDatabaseURL: "postgres://hostsync@db/hostsync",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := &Config{
		Sources: map[string]*models.SourceConfig{
			"qualys":      {},
			"crowdstrike": {Credentials: map[string]string{"api_key": "from-file"}},
		},
	}
	cfg.ApplyEnv(lookup)

	assert.Equal(t, "secret", cfg.Sources["qualys"].APIKey())
	assert.Equal(t, "secret", cfg.Sources["crowdstrike"].APIKey())
	assert.Equal(t, models.StorePostgres, cfg.Store.Type)
	assert.Equal(t, "postgres://hostsync@db/hostsync", cfg.Store.URL)
	require.NoError(t, cfg.Validate())

	untouched := &Config{Store: models.DatabaseConfig{Type: models.StoreMemory}}
	untouched.ApplyEnv(func(string) (string, bool) { return "", false })
	assert.Equal(t, models.StoreMemory, untouched.Store.Type)
	assert.Empty(t, untouched.Store.URL)
}

func TestConfigSourceNames(t *testing.T) {
	cfg := &Config{
		Sources: map[string]*models.SourceConfig{
			"crowdstrike": {Type: models.SourceCrowdStrike},
			"b-qualys":    {Type: models.SourceQualys},
			"a-qualys":    {Type: models.SourceQualys},
		},
	}

	assert.Equal(t, []string{"a-qualys", "b-qualys", "crowdstrike"}, cfg.SourceNames())
}

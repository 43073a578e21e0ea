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

package db

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/hostsync/pkg/models"
)

func TestBuildConnURLDefaults(t *testing.T) {
	t.Parallel()

	raw, err := buildConnURL(&models.DatabaseConfig{
		Host:     "pg",
		Database: "hostsync",
		Username: "sync",
		Password: "secret",
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "pg:5432", u.Host)
	assert.Equal(t, "/hostsync", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	pass, _ := u.User.Password()
	assert.Equal(t, "secret", pass)
}

func TestBuildConnURLPrefersURL(t *testing.T) {
	t.Parallel()

	raw, err := buildConnURL(&models.DatabaseConfig{URL: "postgres://x@y/z", Host: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://x@y/z", raw)
}

func TestBuildConnURLRequiresHost(t *testing.T) {
	t.Parallel()

	_, err := buildConnURL(&models.DatabaseConfig{})
	require.ErrorIs(t, err, ErrDatabaseURLMissing)

	_, err = buildConnURL(nil)
	require.ErrorIs(t, err, ErrDatabaseURLMissing)
}

func TestBuildPoolConfig(t *testing.T) {
	t.Parallel()

	cfg, err := buildPoolConfig(&models.DatabaseConfig{
		Host:             "pg",
		Database:         "hostsync",
		ApplicationName:  "hostsync",
		MaxConnections:   8,
		StatementTimeout: models.Duration(5 * time.Second),
	})
	require.NoError(t, err)

	assert.Equal(t, int32(8), cfg.MaxConns)
	assert.Equal(t, "5000", cfg.ConnConfig.RuntimeParams["statement_timeout"])
	assert.Equal(t, "hostsync", cfg.ConnConfig.RuntimeParams["application_name"])
}

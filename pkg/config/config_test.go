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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/hostsync/pkg/logger"
)

var errTestInvalid = errors.New("name is required")

type testConfig struct {
	Name    string            `json:"name" yaml:"name"`
	Token   string            `json:"token" yaml:"token"`
	Sources map[string]string `json:"sources" yaml:"sources"`
}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return errTestInvalid
	}

	return nil
}

func (c *testConfig) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("TEST_TOKEN"); ok {
		c.Token = v
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func newTestConfig(env map[string]string) *Config {
	c := NewConfig(logger.NewTestLogger())
	c.lookup = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	return c
}

func TestLoadAndValidateJSON(t *testing.T) {
	path := writeFile(t, "hostsync.json", `{"name":"a","token":"file","sources":{"qualys":"x"}}`)

	var cfg testConfig
	require.NoError(t, newTestConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "a", cfg.Name)
	assert.Equal(t, "file", cfg.Token)
	assert.Equal(t, map[string]string{"qualys": "x"}, cfg.Sources)
}

func TestLoadAndValidateYAML(t *testing.T) {
	for _, name := range []string{"hostsync.yaml", "hostsync.YML"} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, "name: b\nsources:\n  crowdstrike: y\n")

			var cfg testConfig
			require.NoError(t, newTestConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

			assert.Equal(t, "b", cfg.Name)
			assert.Equal(t, "y", cfg.Sources["crowdstrike"])
		})
	}
}

func TestLoadAndValidateAppliesEnvBeforeValidating(t *testing.T) {
	path := writeFile(t, "hostsync.json", `{"name":"a","token":"file"}`)

	var cfg testConfig
	require.NoError(t, newTestConfig(map[string]string{"TEST_TOKEN": "env"}).
		LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "env", cfg.Token)
}

func TestLoadAndValidateErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestConfig(nil)

	var cfg testConfig

	err := c.LoadAndValidate(ctx, filepath.Join(t.TempDir(), "missing.json"), &cfg)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = c.LoadAndValidate(ctx, writeFile(t, "bad.json", `{"name":`), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")

	err = c.LoadAndValidate(ctx, writeFile(t, "bad.yaml", "name: [unterminated\n"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal YAML")

	err = c.LoadAndValidate(ctx, writeFile(t, "empty.json", `{}`), &testConfig{})
	require.ErrorIs(t, err, errTestInvalid)

	err = c.LoadAndValidate(ctx, writeFile(t, "ok.json", `{}`), testConfig{})
	require.ErrorIs(t, err, errInvalidConfigPtr)
}

func TestValidateConfigSkipsNonValidators(t *testing.T) {
	require.NoError(t, ValidateConfig(struct{}{}))
	require.ErrorIs(t, ValidateConfig(&testConfig{}), errTestInvalid)
}

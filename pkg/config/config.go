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

// Package config loads service configuration files.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/carverauto/hostsync/pkg/logger"
)

var errInvalidConfigPtr = errors.New("config must be a non-nil pointer")

// ConfigLoader reads a configuration source into dst.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

// EnvApplier is implemented by configurations that take overrides from the
// environment after the file has been read.
type EnvApplier interface {
	ApplyEnv(lookup func(key string) (string, bool))
}

// Config holds the configuration loading dependencies.
type Config struct {
	loader ConfigLoader
	lookup func(string) (string, bool)
	logger logger.Logger
}

// NewConfig initializes a new Config instance with a file loader reading the
// real environment.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = logger.Global()
	}

	return &Config{
		loader: &FileConfigLoader{},
		lookup: os.LookupEnv,
		logger: log.WithComponent("config"),
	}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads path into cfg, applies environment overrides and
// validates the result.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errInvalidConfigPtr
	}

	if err := c.loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	if applier, ok := cfg.(EnvApplier); ok {
		applier.ApplyEnv(c.lookup)
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	c.logger.Debug().Str("path", path).Msg("Loaded configuration")

	return nil
}

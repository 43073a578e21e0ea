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

package models

// DatabaseConfig selects and configures the host store.
type DatabaseConfig struct {
	// Type is "memory" or "postgres".
	Type string `json:"type" yaml:"type"`

	// URL, when set, is used as the connection string and the discrete fields
	// below are ignored except for pool sizing.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	Host            string `json:"host,omitempty" yaml:"host,omitempty"`
	Port            int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database        string `json:"database,omitempty" yaml:"database,omitempty"`
	Username        string `json:"username,omitempty" yaml:"username,omitempty"`
	Password        string `json:"password,omitempty" yaml:"password,omitempty"`
	SSLMode         string `json:"ssl_mode,omitempty" yaml:"ssl_mode,omitempty"`
	ApplicationName string `json:"application_name,omitempty" yaml:"application_name,omitempty"`

	MaxConnections    int32    `json:"max_connections,omitempty" yaml:"max_connections,omitempty"`
	MinConnections    int32    `json:"min_connections,omitempty" yaml:"min_connections,omitempty"`
	MaxConnLifetime   Duration `json:"max_conn_lifetime,omitempty" yaml:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod Duration `json:"health_check_period,omitempty" yaml:"health_check_period,omitempty"`
	StatementTimeout  Duration `json:"statement_timeout,omitempty" yaml:"statement_timeout,omitempty"`
}

// Store types.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

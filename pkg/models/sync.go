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

// SourceConfig describes one inventory source the sync pipeline pulls hosts from.
type SourceConfig struct {
	Type               string            `json:"type" yaml:"type"`
	Endpoint           string            `json:"endpoint" yaml:"endpoint"`
	Credentials        map[string]string `json:"credentials" yaml:"credentials"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`

	// Skip is the first record offset requested; PageSize the page length.
	Skip     int `json:"skip" yaml:"skip"`
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxPages bounds pagination. Zero means a single page, which is how the
	// upstream APIs are queried today.
	MaxPages int `json:"max_pages,omitempty" yaml:"max_pages,omitempty"`

	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// APIKey returns the configured API token for the source.
func (c *SourceConfig) APIKey() string {
	if c == nil {
		return ""
	}

	return c.Credentials["api_key"]
}

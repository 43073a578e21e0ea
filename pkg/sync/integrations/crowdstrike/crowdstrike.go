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

// Package crowdstrike fetches devices from the CrowdStrike Falcon host API.
package crowdstrike

import (
	"encoding/json"

	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
	"github.com/carverauto/hostsync/pkg/sync/integrations"
)

// Source is the provenance tag records from this integration carry.
const Source = models.SourceCrowdStrike

// New returns a paging client for the CrowdStrike host endpoint.
func New(config *models.SourceConfig, httpClient integrations.HTTPClient, log logger.Logger) *integrations.Client {
	return integrations.NewClient(Source, config, httpClient, log)
}

// Decode parses one raw device.
func Decode(raw json.RawMessage) (*Device, error) {
	var d Device
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}

	return &d, nil
}

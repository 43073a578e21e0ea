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

// Package qualys fetches host assets from the Qualys host API.
package qualys

import (
	"encoding/json"

	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
	"github.com/carverauto/hostsync/pkg/sync/integrations"
)

// Source is the provenance tag records from this integration carry.
const Source = models.SourceQualys

// New returns a paging client for the Qualys host endpoint.
func New(config *models.SourceConfig, httpClient integrations.HTTPClient, log logger.Logger) *integrations.Client {
	return integrations.NewClient(Source, config, httpClient, log)
}

// Decode parses one raw host asset.
func Decode(raw json.RawMessage) (*Host, error) {
	var h Host
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}

	return &h, nil
}

// EC2 returns the first EC2 source block, if any.
func (h *Host) EC2() *EC2AssetSource {
	for _, s := range h.SourceInfo.List {
		if s.EC2 != nil {
			return s.EC2
		}
	}

	return nil
}

// PrimaryInterface returns the first network interface, if any.
func (h *Host) PrimaryInterface() *NetworkInterface {
	if len(h.NetworkInterface.List) == 0 {
		return nil
	}

	return h.NetworkInterface.List[0].Interface
}

// PrimaryProcessor returns the first processor, if any.
func (h *Host) PrimaryProcessor() *Processor {
	if len(h.Processor.List) == 0 {
		return nil
	}

	return h.Processor.List[0].Processor
}

// TagNames returns the names of all tags, skipping unnamed ones.
func (h *Host) TagNames() []string {
	var names []string

	for _, t := range h.Tags.List {
		if t.Tag != nil && t.Tag.Name != nil {
			names = append(names, *t.Tag.Name)
		}
	}

	return names
}

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

package crowdstrike

import (
	"bytes"
	"encoding/json"
)

// Device is a Falcon host as returned by the host API.
type Device struct {
	DeviceID     *string `json:"device_id"`
	CID          *string `json:"cid"`
	Hostname     *string `json:"hostname"`
	ExternalIP   *string `json:"external_ip"`
	LocalIP      *string `json:"local_ip"`
	MACAddress   *string `json:"mac_address"`
	PlatformName *string `json:"platform_name"`
	OSVersion    *string `json:"os_version"`
	CPUSignature Text    `json:"cpu_signature"`
	Status       *string `json:"status"`

	// FirstSeen and LastSeen are usually RFC 3339 strings; older exports
	// carry epoch seconds.
	FirstSeen any `json:"first_seen"`
	LastSeen  any `json:"last_seen"`

	AgentVersion    *string `json:"agent_version"`
	InstanceID      *string `json:"instance_id"`
	ServiceProvider *string `json:"service_provider"`
	KernelVersion   *string `json:"kernel_version"`

	Tags []string `json:"tags"`
}

// Text accepts a JSON string or number; Falcon has emitted both for the same
// field across API versions.
type Text struct {
	Value *string
}

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		t.Value = &s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	s = n.String()
	t.Value = &s

	return nil
}

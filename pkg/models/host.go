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

// Package models holds the data types shared across hostsync packages.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire names of HostRecord fields. Stored documents and store lookups use these.
const (
	FieldID         = "id"
	FieldHostID     = "host_id"
	FieldHostname   = "hostname"
	FieldExternalIP = "external_ip"
	FieldLocalIP    = "local_ip"
	FieldMACAddress = "mac_address"
	FieldPlatform   = "platform"
	FieldOSVersion  = "os_version"
	FieldCPU        = "cpu"
	FieldStatus     = "status"
	FieldSource     = "source"
	FieldFirstSeen  = "first_seen"
	FieldLastSeen   = "last_seen"
	FieldTags       = "tags"
)

// Source tags for the supported inventory systems.
const (
	SourceQualys      = "qualys"
	SourceCrowdStrike = "crowdstrike"
)

// StringFields are the optional string fields with a dedicated slot.
var StringFields = []string{
	FieldHostID,
	FieldHostname,
	FieldExternalIP,
	FieldLocalIP,
	FieldMACAddress,
	FieldPlatform,
	FieldOSVersion,
	FieldCPU,
	FieldStatus,
}

// IdentityFields are the fields used to decide that two records describe the same host.
var IdentityFields = []string{FieldHostname, FieldExternalIP, FieldLocalIP, FieldMACAddress}

// HostRecord is one host as seen by one or more inventory sources.
//
// A nil pointer field means the source provided nothing for it; absence and
// explicit null are the same thing. FirstSeen and LastSeen hold a date as it was
// observed (string, epoch seconds or time.Time) until it has been through
// dates.ToInstant, after which they hold a UTC time.Time.
type HostRecord struct {
	ID string

	HostID     *string
	Hostname   *string
	ExternalIP *string
	LocalIP    *string
	MACAddress *string
	Platform   *string
	OSVersion  *string
	CPU        *string
	Status     *string

	Source    string
	FirstSeen any
	LastSeen  any
	Tags      []string

	// Extra carries source fields without a dedicated slot.
	Extra map[string]any
}

// StringPtr is a convenience for building records.
func StringPtr(s string) *string {
	return &s
}

func (h *HostRecord) stringFields() map[string]**string {
	return map[string]**string{
		FieldHostID:     &h.HostID,
		FieldHostname:   &h.Hostname,
		FieldExternalIP: &h.ExternalIP,
		FieldLocalIP:    &h.LocalIP,
		FieldMACAddress: &h.MACAddress,
		FieldPlatform:   &h.Platform,
		FieldOSVersion:  &h.OSVersion,
		FieldCPU:        &h.CPU,
		FieldStatus:     &h.Status,
	}
}

// StringField returns the named optional string field, or nil when the record
// has no dedicated slot by that name.
func (h *HostRecord) StringField(field string) *string {
	if slot, ok := h.stringFields()[field]; ok {
		return *slot
	}

	return nil
}

// SetStringField stores v in the named slot. It reports false when the record
// has no slot by that name.
func (h *HostRecord) SetStringField(field string, v *string) bool {
	slot, ok := h.stringFields()[field]
	if ok {
		*slot = v
	}

	return ok
}

// Value returns a field by wire name and whether it is present (non-null).
func (h *HostRecord) Value(field string) (any, bool) {
	if slot, ok := h.stringFields()[field]; ok {
		if *slot == nil {
			return nil, false
		}

		return **slot, true
	}

	switch field {
	case FieldID:
		return h.ID, h.ID != ""
	case FieldSource:
		return h.Source, h.Source != ""
	case FieldFirstSeen:
		return h.FirstSeen, h.FirstSeen != nil
	case FieldLastSeen:
		return h.LastSeen, h.LastSeen != nil
	case FieldTags:
		return h.Tags, h.Tags != nil
	}

	v, ok := h.Extra[field]

	return v, ok && v != nil
}

// Clone returns a deep copy. Extra values are copied shallowly.
func (h *HostRecord) Clone() *HostRecord {
	if h == nil {
		return nil
	}

	out := &HostRecord{
		ID:        h.ID,
		Source:    h.Source,
		FirstSeen: h.FirstSeen,
		LastSeen:  h.LastSeen,
	}

	dst := out.stringFields()
	for name, slot := range h.stringFields() {
		if *slot != nil {
			v := **slot
			*dst[name] = &v
		}
	}

	if h.Tags != nil {
		out.Tags = append(make([]string, 0, len(h.Tags)), h.Tags...)
	}

	if h.Extra != nil {
		out.Extra = make(map[string]any, len(h.Extra))
		for k, v := range h.Extra {
			out.Extra[k] = v
		}
	}

	return out
}

// Identity renders the identity fields for log lines and error messages.
func (h *HostRecord) Identity() map[string]string {
	out := make(map[string]string, len(IdentityFields))

	for _, field := range IdentityFields {
		if v := h.StringField(field); v != nil {
			out[field] = *v
		}
	}

	return out
}

func isReserved(field string) bool {
	switch field {
	case FieldID, FieldSource, FieldFirstSeen, FieldLastSeen, FieldTags:
		return true
	}

	return false
}

// MarshalJSON writes the record as one flat document; Extra keys sit next to
// the named fields.
func (h HostRecord) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(h.Extra)+14)

	for k, v := range h.Extra {
		if isReserved(k) {
			continue
		}

		doc[k] = v
	}

	for name, slot := range h.stringFields() {
		if *slot != nil {
			doc[name] = **slot
		} else {
			delete(doc, name)
		}
	}

	if h.ID != "" {
		doc[FieldID] = h.ID
	}

	doc[FieldSource] = h.Source

	if h.FirstSeen != nil {
		doc[FieldFirstSeen] = h.FirstSeen
	}

	if h.LastSeen != nil {
		doc[FieldLastSeen] = h.LastSeen
	}

	if h.Tags != nil {
		doc[FieldTags] = h.Tags
	}

	return json.Marshal(doc)
}

// UnmarshalJSON reads a flat document. Numbers are kept as json.Number so epoch
// timestamps survive untouched.
func (h *HostRecord) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*h = HostRecord{}
	slots := h.stringFields()

	for key, raw := range doc {
		if slot, ok := slots[key]; ok {
			*slot = decodeOptionalString(raw)
			continue
		}

		value, err := decodeValue(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}

		if err := h.assign(key, value, raw); err != nil {
			return err
		}
	}

	return nil
}

func (h *HostRecord) assign(key string, value any, raw json.RawMessage) error {
	switch key {
	case FieldID:
		if s, ok := value.(string); ok {
			h.ID = s
		}
	case FieldSource:
		if s, ok := value.(string); ok {
			h.Source = s
		}
	case FieldFirstSeen:
		h.FirstSeen = value
	case FieldLastSeen:
		h.LastSeen = value
	case FieldTags:
		if value == nil {
			return nil
		}

		if err := json.Unmarshal(raw, &h.Tags); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	default:
		if h.Extra == nil {
			h.Extra = make(map[string]any)
		}

		h.Extra[key] = value
	}

	return nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return v, nil
}

// decodeOptionalString accepts a JSON string, null, or any other scalar, which
// is kept as its literal text.
func decodeOptionalString(raw json.RawMessage) *string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return &s
	}

	s = string(trimmed)

	return &s
}

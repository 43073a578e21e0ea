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

// Package normalize maps raw source records onto the common HostRecord shape.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carverauto/hostsync/pkg/dates"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
	"github.com/carverauto/hostsync/pkg/sync/integrations/crowdstrike"
	"github.com/carverauto/hostsync/pkg/sync/integrations/qualys"
)

// Normalizer converts raw records. Missing source fields become nil; a date
// that does not parse is dropped with a warning.
type Normalizer struct {
	logger logger.Logger
}

// New returns a Normalizer logging through log.
func New(log logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Global()
	}

	return &Normalizer{logger: log.WithComponent("normalize")}
}

// Normalize decodes raw according to source and maps it.
func (n *Normalizer) Normalize(source string, raw json.RawMessage) (*models.HostRecord, error) {
	switch source {
	case models.SourceQualys:
		h, err := qualys.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, source, err)
		}

		return n.Qualys(h), nil
	case models.SourceCrowdStrike:
		d, err := crowdstrike.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedRecord, source, err)
		}

		return n.CrowdStrike(d), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
}

// NormalizeBatch maps every raw record of one source. Records that fail are
// left out and their errors joined; the rest are returned in input order.
func (n *Normalizer) NormalizeBatch(source string, raws []json.RawMessage) ([]*models.HostRecord, error) {
	out := make([]*models.HostRecord, 0, len(raws))

	var errs []error

	for i, raw := range raws {
		rec, err := n.Normalize(source, raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}

		out = append(out, rec)
	}

	return out, errors.Join(errs...)
}

// Qualys maps a Qualys host asset.
func (n *Normalizer) Qualys(h *qualys.Host) *models.HostRecord {
	if h == nil {
		return nil
	}

	rec := &models.HostRecord{
		Hostname:  firstNonEmpty(h.DNSHostName, h.FQDN),
		LocalIP:   h.Address,
		OSVersion: h.OS,
		Source:    models.SourceQualys,
		Tags:      append([]string{}, h.TagNames()...),
	}

	if h.Created != nil {
		rec.FirstSeen = n.instant(models.FieldFirstSeen, h.Created.Value)
	}

	if agent := h.AgentInfo; agent != nil {
		rec.HostID = agent.AgentID
		rec.Platform = agent.Platform
		rec.Status = agent.Status

		if agent.LastCheckedIn != nil {
			rec.LastSeen = n.instant(models.FieldLastSeen, agent.LastCheckedIn.Value)
		}

		setExtra(rec, "agent_version", agent.AgentVersion)
	}

	if ec2 := h.EC2(); ec2 != nil {
		rec.ExternalIP = ec2.PublicIPAddress

		setExtra(rec, "ec2_instance_id", ec2.InstanceID)
		setExtra(rec, "ec2_region", ec2.Region)
	}

	if iface := h.PrimaryInterface(); iface != nil {
		rec.MACAddress = iface.MACAddress
	}

	if cpu := h.PrimaryProcessor(); cpu != nil {
		rec.CPU = cpu.Name
	}

	setExtra(rec, "cloud_provider", h.CloudProvider)

	return rec
}

// CrowdStrike maps a Falcon device.
func (n *Normalizer) CrowdStrike(d *crowdstrike.Device) *models.HostRecord {
	if d == nil {
		return nil
	}

	rec := &models.HostRecord{
		HostID:     d.DeviceID,
		Hostname:   d.Hostname,
		ExternalIP: d.ExternalIP,
		LocalIP:    d.LocalIP,
		MACAddress: d.MACAddress,
		Platform:   d.PlatformName,
		OSVersion:  d.OSVersion,
		CPU:        d.CPUSignature.Value,
		Status:     d.Status,
		Source:     models.SourceCrowdStrike,
		FirstSeen:  n.instant(models.FieldFirstSeen, d.FirstSeen),
		LastSeen:   n.instant(models.FieldLastSeen, d.LastSeen),
		Tags:       append([]string{}, d.Tags...),
	}

	setExtra(rec, "agent_version", d.AgentVersion)
	setExtra(rec, "instance_id", d.InstanceID)
	setExtra(rec, "service_provider", d.ServiceProvider)
	setExtra(rec, "kernel_version", d.KernelVersion)

	return rec
}

// instant returns v as a UTC time.Time, or nil when v is absent or unparseable.
func (n *Normalizer) instant(field string, v any) any {
	t, err := dates.Normalize(v)
	if err != nil {
		n.logger.Warn().
			Err(err).
			Str("field", field).
			Msg("Dropping unparseable date")
	}

	return t
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}

	return nil
}

func setExtra(rec *models.HostRecord, key string, v *string) {
	if v == nil {
		return
	}

	if rec.Extra == nil {
		rec.Extra = make(map[string]any)
	}

	rec.Extra[key] = *v
}

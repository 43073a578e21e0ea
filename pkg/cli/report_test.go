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

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/hostsync/pkg/models"
	"github.com/carverauto/hostsync/pkg/reconcile"
	"github.com/carverauto/hostsync/pkg/report"
	"github.com/carverauto/hostsync/pkg/sync"
)

func testSummary() *report.Summary {
	return &report.Summary{
		OS: []report.Bucket{
			{Value: models.StringPtr("Microsoft Windows Server 2019 Datacenter"), Count: 3},
			{Value: models.StringPtr("Ubuntu 22.04"), Count: 2},
			{Value: nil, Count: 1},
		},
		Platform: []report.Bucket{
			{Value: models.StringPtr("Windows"), Count: 3},
			{Value: models.StringPtr("Linux"), Count: 3},
		},
		Age:    report.Age{Older: 4, Newer: 1, Unknown: 1},
		Cutoff: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderReportTable(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderReport(&buf, testSummary(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "Operating systems")
	assert.Contains(t, out, "Microsoft Windows...")
	assert.Contains(t, out, "Ubuntu 22.04")
	assert.Contains(t, out, "Unknown")
	assert.Contains(t, out, "Platforms")
	assert.Contains(t, out, "before cutoff")
	assert.Contains(t, out, "cutoff 2024-05-01T00:00:00Z")
}

func TestRenderReportJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, RenderReport(&buf, testSummary(), FormatJSON))

	var doc ReportDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, map[string]int{
		"Microsoft Windows...": 3,
		"Ubuntu 22.04":         2,
		"Unknown":              1,
	}, doc.OS)
	assert.Equal(t, map[string]int{"Windows": 3, "Linux": 3}, doc.Platform)
	assert.Equal(t, map[string]int{"old_hosts": 4, "new_hosts": 1, "unknown_hosts": 1}, doc.Age)
	assert.True(t, doc.Cutoff.Equal(testSummary().Cutoff))
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer

	err := RenderReport(&buf, testSummary(), "xml")
	require.True(t, errors.Is(err, errUnknownFormat))

	err = RenderRun(&buf, &sync.RunResult{}, nil, "csv")
	require.True(t, errors.Is(err, errUnknownFormat))
}

func TestRenderRun(t *testing.T) {
	result := &sync.RunResult{
		Sources: map[string]sync.SourceResult{
			"qualys":      {Fetched: 10, Normalized: 9, Rejected: 1},
			"crowdstrike": {Error: "source fetch failed: crowdstrike: timeout"},
		},
		Breakers: map[string]sync.BreakerSnapshot{
			"crowdstrike": {Source: "crowdstrike", State: "half-open", Failures: 5},
		},
		Stats:    reconcile.Stats{Inserted: 4, Merged: 5},
		Duration: 1500 * time.Millisecond,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderRun(&buf, result, []string{"qualys", "crowdstrike", "missing"}, FormatTable))

	out := buf.String()
	assert.Contains(t, out, "qualys")
	assert.Contains(t, out, "source fetch failed")
	assert.Contains(t, out, "inserted 4, merged 5, skipped 0 in 1.5s")
	assert.NotContains(t, out, "missing")
	assert.Contains(t, out, "Circuit")
	assert.Contains(t, out, "half-open")

	buf.Reset()
	require.NoError(t, RenderRun(&buf, result, nil, FormatJSON))

	var decoded sync.RunResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, result.Stats, decoded.Stats)
	assert.Equal(t, 9, decoded.Sources["qualys"].Normalized)
	assert.Equal(t, "half-open", decoded.Breakers["crowdstrike"].State)
}

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

// Package cli renders command output for the hostsync binary.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/carverauto/hostsync/pkg/report"
	"github.com/carverauto/hostsync/pkg/sync"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaComment    = "#6272A4"
)

// Output formats accepted by Render functions.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

var errUnknownFormat = errors.New("unknown output format")

type styles struct {
	title, header, cell, muted, border, failure lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPurple)).
			Bold(true),
		header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)).
			Bold(true).
			Padding(0, 1),
		cell: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)).
			Padding(0, 1),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		border: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPurple)),
		failure: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Padding(0, 1),
	}
}

func (s styles) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.header
			}

			return s.cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// ReportDocument is the JSON shape of the report command.
type ReportDocument struct {
	OS       map[string]int `json:"os"`
	Platform map[string]int `json:"platform"`
	Age      map[string]int `json:"age"`
	Cutoff   time.Time      `json:"cutoff"`
}

// NewReportDocument labels the buckets the way charts expect them.
func NewReportDocument(s *report.Summary) ReportDocument {
	return ReportDocument{
		OS:       report.Labels(s.OS),
		Platform: report.Labels(s.Platform),
		Age:      s.Age.Counts(),
		Cutoff:   s.Cutoff,
	}
}

// RenderReport writes the summary as tables or as JSON.
func RenderReport(w io.Writer, s *report.Summary, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(NewReportDocument(s))
	case FormatTable, "":
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	st := newStyles()

	var b strings.Builder

	section := func(title, body string) {
		b.WriteString(st.title.Render(title))
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}

	section("Operating systems", st.table([]string{"OS", "Hosts"}, bucketRows(s.OS)))
	section("Platforms", st.table([]string{"Platform", "Hosts"}, bucketRows(s.Platform)))
	section("Host age", st.table([]string{"Last seen", "Hosts"}, [][]string{
		{"before cutoff", strconv.Itoa(s.Age.Older)},
		{"since cutoff", strconv.Itoa(s.Age.Newer)},
		{"unknown", strconv.Itoa(s.Age.Unknown)},
	}))

	b.WriteString(st.muted.Render("cutoff " + s.Cutoff.UTC().Format(time.RFC3339)))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())

	return err
}

func bucketRows(buckets []report.Bucket) [][]string {
	rows := make([][]string, 0, len(buckets))
	for _, bucket := range buckets {
		rows = append(rows, []string{bucket.Label(), strconv.Itoa(bucket.Count)})
	}

	return rows
}

// RenderRun writes the outcome of one sync run.
func RenderRun(w io.Writer, result *sync.RunResult, names []string, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(result)
	case FormatTable, "":
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	st := newStyles()
	rows := make([][]string, 0, len(names))

	for _, name := range names {
		sr, ok := result.Sources[name]
		if !ok {
			continue
		}

		status := lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)).Render("ok")
		if sr.Error != "" {
			status = st.failure.Render(sr.Error)
		}

		circuit := "-"
		if snap, ok := result.Breakers[name]; ok {
			circuit = snap.State
		}

		rows = append(rows, []string{
			name,
			strconv.Itoa(sr.Fetched),
			strconv.Itoa(sr.Normalized),
			strconv.Itoa(sr.Rejected),
			circuit,
			status,
		})
	}

	var b strings.Builder

	b.WriteString(st.title.Render("Sources"))
	b.WriteString("\n")
	b.WriteString(st.table([]string{"Source", "Fetched", "Normalized", "Rejected", "Circuit", "Status"}, rows))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange)).Render(
		fmt.Sprintf("inserted %d, merged %d, skipped %d in %s",
			result.Stats.Inserted, result.Stats.Merged, result.Stats.Skipped,
			result.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())

	return err
}

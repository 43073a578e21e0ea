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

package report

const (
	maxLabelLen   = 20
	truncatedLen  = 17
	unknownLabel  = "Unknown"
	ellipsisLabel = "..."
)

// Label is the display text for a bucket: empty or absent values read
// "Unknown" and long values are cut to fit a chart axis.
func (b Bucket) Label() string {
	if b.Value == nil || *b.Value == "" {
		return unknownLabel
	}

	r := []rune(*b.Value)
	if len(r) <= maxLabelLen {
		return *b.Value
	}

	return string(r[:truncatedLen]) + ellipsisLabel
}

// Labels maps display labels to counts. Buckets that collapse onto the same
// label are summed.
func Labels(buckets []Bucket) map[string]int {
	out := make(map[string]int, len(buckets))

	for _, b := range buckets {
		out[b.Label()] += b.Count
	}

	return out
}

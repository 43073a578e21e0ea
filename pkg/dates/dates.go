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

// Package dates turns the date representations inventory sources emit into
// comparable UTC instants.
package dates

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidDateFormat is matched by every InvalidDateFormatError.
var ErrInvalidDateFormat = errors.New("invalid date format")

// InvalidDateFormatError carries the value that could not be parsed.
type InvalidDateFormatError struct {
	Raw any
}

func (e *InvalidDateFormatError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidDateFormat, e.Raw)
}

func (*InvalidDateFormatError) Unwrap() error {
	return ErrInvalidDateFormat
}

// Layouts tried in order. Layouts without a zone parse as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var (
	// "…10:00:00Z+02:00": marker then offset.
	zoneThenOffset = regexp.MustCompile(`^(.*\d)Z([+-]\d{2}:?\d{2})$`)
	// "…10:00:00+02:00Z": offset then marker.
	offsetThenZone = regexp.MustCompile(`^(.*\d[+-]\d{2}:?\d{2})Z$`)
)

// ToInstant converts a string, epoch-seconds number or time.Time into a UTC instant.
func ToInstant(v any) (time.Time, error) {
	switch value := v.(type) {
	case string:
		return parseString(value)
	case time.Time:
		return value.UTC(), nil
	case *time.Time:
		if value == nil {
			return time.Time{}, &InvalidDateFormatError{Raw: v}
		}

		return value.UTC(), nil
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return time.Unix(n, 0).UTC(), nil
		}

		f, err := value.Float64()
		if err != nil {
			return time.Time{}, &InvalidDateFormatError{Raw: v}
		}

		return fromFloat(f, v)
	case int:
		return time.Unix(int64(value), 0).UTC(), nil
	case int8:
		return time.Unix(int64(value), 0).UTC(), nil
	case int16:
		return time.Unix(int64(value), 0).UTC(), nil
	case int32:
		return time.Unix(int64(value), 0).UTC(), nil
	case int64:
		return time.Unix(value, 0).UTC(), nil
	case uint:
		return fromUint(uint64(value), v)
	case uint8:
		return time.Unix(int64(value), 0).UTC(), nil
	case uint16:
		return time.Unix(int64(value), 0).UTC(), nil
	case uint32:
		return time.Unix(int64(value), 0).UTC(), nil
	case uint64:
		return fromUint(value, v)
	case float32:
		return fromFloat(float64(value), v)
	case float64:
		return fromFloat(value, v)
	default:
		return time.Time{}, &InvalidDateFormatError{Raw: v}
	}
}

func fromUint(n uint64, raw any) (time.Time, error) {
	if n > math.MaxInt64 {
		return time.Time{}, &InvalidDateFormatError{Raw: raw}
	}

	return time.Unix(int64(n), 0).UTC(), nil
}

// fromFloat rejects values whose whole seconds do not fit an int64.
func fromFloat(f float64, raw any) (time.Time, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return time.Time{}, &InvalidDateFormatError{Raw: raw}
	}

	sec, frac := math.Modf(f)

	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
}

func parseString(raw string) (time.Time, error) {
	s := stripRedundantZone(strings.TrimSpace(raw))

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, &InvalidDateFormatError{Raw: raw}
}

// stripRedundantZone drops a "Z" that sits next to an explicit numeric offset;
// the offset wins.
func stripRedundantZone(s string) string {
	if m := zoneThenOffset.FindStringSubmatch(s); m != nil {
		return m[1] + m[2]
	}

	if m := offsetThenZone.FindStringSubmatch(s); m != nil {
		return m[1]
	}

	return s
}

// Normalize returns v as a UTC instant. Absent values come back as nil with no
// error; a value that does not parse comes back as nil with the parse error, so
// callers drop only that field.
func Normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	t, err := ToInstant(v)
	if err != nil {
		return nil, err
	}

	return t, nil
}

// MaxInstant returns the later of two observed dates. A side that is absent or
// unparseable drops out; ok is false when neither side yields an instant.
func MaxInstant(a, b any) (time.Time, bool) {
	ta, errA := instantOrAbsent(a)
	tb, errB := instantOrAbsent(b)

	switch {
	case errA != nil && errB != nil:
		return time.Time{}, false
	case errA != nil:
		return tb, true
	case errB != nil:
		return ta, true
	case tb.After(ta):
		return tb, true
	default:
		return ta, true
	}
}

var errAbsent = errors.New("absent")

func instantOrAbsent(v any) (time.Time, error) {
	if v == nil {
		return time.Time{}, errAbsent
	}

	return ToInstant(v)
}

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

package dates

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUTC(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := time.Parse(time.RFC3339Nano, s)
	require.NoError(t, err)

	return ts.UTC()
}

func TestToInstant_Strings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"zulu", "2024-01-01T00:00:00Z", "2024-01-01T00:00:00Z"},
		{"offset", "2024-05-01T10:00:00+02:00", "2024-05-01T08:00:00Z"},
		{"redundant zulu before offset", "2024-05-01T10:00:00Z+02:00", "2024-05-01T08:00:00Z"},
		{"redundant zulu after offset", "2024-05-01T10:00:00+02:00Z", "2024-05-01T08:00:00Z"},
		{"compact offset", "2024-05-01T10:00:00-0500", "2024-05-01T15:00:00Z"},
		{"no zone is utc", "2024-05-01T10:00:00", "2024-05-01T10:00:00Z"},
		{"fractional seconds", "2024-05-01T10:00:00.123456Z", "2024-05-01T10:00:00.123456Z"},
		{"space separated", "2024-05-01 10:00:00", "2024-05-01T10:00:00Z"},
		{"space separated with offset", "2024-05-01 10:00:00+01:00", "2024-05-01T09:00:00Z"},
		{"date only", "2024-05-01", "2024-05-01T00:00:00Z"},
		{"surrounding whitespace", "  2024-05-01T10:00:00Z ", "2024-05-01T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInstant(tt.input)
			require.NoError(t, err)
			assert.True(t, mustUTC(t, tt.want).Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestToInstant_Numbers(t *testing.T) {
	want := mustUTC(t, "2024-01-01T00:00:00Z")

	for _, v := range []any{1704067200, int64(1704067200), float64(1704067200), json.Number("1704067200")} {
		got, err := ToInstant(v)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%T", v)
	}

	got, err := ToInstant(1704067200.5)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, got.Sub(want))

	got, err = ToInstant(json.Number("1704067200.25"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, got.Sub(want))
}

func TestToInstant_SmallAndUnsignedIntegers(t *testing.T) {
	for _, v := range []any{int8(100), int16(100), uint8(100), uint16(100), uint64(100), uint(100)} {
		got, err := ToInstant(v)
		require.NoError(t, err, "%T", v)
		assert.Equal(t, time.Unix(100, 0).UTC(), got, "%T", v)
	}

	got, err := ToInstant(uint64(1704067200))
	require.NoError(t, err)
	assert.True(t, mustUTC(t, "2024-01-01T00:00:00Z").Equal(got))
}

func TestToInstant_OutOfRangeNumbers(t *testing.T) {
	for _, v := range []any{^uint64(0), 1e300, -1e300, float32(1e38)} {
		_, err := ToInstant(v)
		require.ErrorIs(t, err, ErrInvalidDateFormat, "%T %v", v, v)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("2024-05-01T10:00:00Z+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), got)

	got, err = Normalize(int64(1704067200))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = Normalize("not a date")
	require.ErrorIs(t, err, ErrInvalidDateFormat)
	assert.Nil(t, got)
}

func TestToInstant_Times(t *testing.T) {
	zone := time.FixedZone("CEST", 2*60*60)
	local := time.Date(2024, 5, 1, 10, 0, 0, 0, zone)

	got, err := ToInstant(local)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), got)

	got, err = ToInstant(&local)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())

	var nilTime *time.Time
	_, err = ToInstant(nilTime)
	require.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestToInstant_Invalid(t *testing.T) {
	for _, v := range []any{"yesterday", "", "2024-13-45", true, nil, []string{"2024-01-01"}} {
		_, err := ToInstant(v)
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidDateFormat)

		var dateErr *InvalidDateFormatError
		require.True(t, errors.As(err, &dateErr))
		assert.Equal(t, v, dateErr.Raw)
	}
}

func TestMaxInstant(t *testing.T) {
	jan := "2024-01-01T00:00:00Z"
	feb := "2024-02-01T00:00:00Z"

	got, ok := MaxInstant(jan, feb)
	require.True(t, ok)
	assert.True(t, mustUTC(t, feb).Equal(got))

	// Order does not matter.
	got2, ok := MaxInstant(feb, jan)
	require.True(t, ok)
	assert.Equal(t, got, got2)

	got, ok = MaxInstant(nil, jan)
	require.True(t, ok)
	assert.True(t, mustUTC(t, jan).Equal(got))

	got, ok = MaxInstant("garbage", jan)
	require.True(t, ok)
	assert.True(t, mustUTC(t, jan).Equal(got))

	_, ok = MaxInstant(nil, "garbage")
	assert.False(t, ok)
}

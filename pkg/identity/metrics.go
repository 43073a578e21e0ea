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

package identity

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "hostsync.identity"

	metricLookupLatency = "hostsync_identity_lookup_latency_seconds"
	metricAmbiguous     = "hostsync_identity_ambiguous_total"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	lookupHistogram metric.Float64Histogram
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	ambiguousCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	hist, err := meter.Float64Histogram(
		metricLookupLatency,
		metric.WithDescription("Latency of identity lookups against the host store"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
	lookupHistogram = hist

	counter, err := meter.Int64Counter(
		metricAmbiguous,
		metric.WithDescription("Lookups where more than one stored host matched"),
	)
	if err != nil {
		otel.Handle(err)
	}
	ambiguousCounter = counter
}

func recordLookup(ctx context.Context, d time.Duration, found bool) {
	meterOnce.Do(initMeter)
	if lookupHistogram == nil {
		return
	}

	lookupHistogram.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("found", found)))
}

func recordAmbiguous(ctx context.Context) {
	meterOnce.Do(initMeter)
	if ambiguousCounter == nil {
		return
	}

	ambiguousCounter.Add(ctx, 1)
}

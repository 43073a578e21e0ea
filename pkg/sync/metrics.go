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

package sync

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "hostsync.sync"

	metricFetchedTotal     = "hostsync_sync_fetched_records_total"
	metricFetchFailedTotal = "hostsync_sync_fetch_failures_total"
	metricTransitionsTotal = "hostsync_sync_breaker_transitions_total"
	metricRejectionsTotal  = "hostsync_sync_breaker_rejections_total"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	fetchedCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	fetchFailedCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	transitionsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	rejectionsCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			otel.Handle(err)

			return nil
		}

		return c
	}

	fetchedCounter = counter(metricFetchedTotal, "Raw host records fetched, by source")
	fetchFailedCounter = counter(metricFetchFailedTotal, "Source fetches that failed, by source")
	transitionsCounter = counter(metricTransitionsTotal, "Circuit breaker state changes, by source and new state")
	rejectionsCounter = counter(metricRejectionsTotal, "Fetches skipped because the source circuit was open")
}

func sourceAttr(source string) metric.AddOption {
	return metric.WithAttributes(attribute.String("source", source))
}

func recordFetch(ctx context.Context, source string, n int, err error) {
	meterOnce.Do(initMeter)

	if err != nil {
		if fetchFailedCounter != nil {
			fetchFailedCounter.Add(ctx, 1, sourceAttr(source))
		}

		return
	}

	if fetchedCounter != nil {
		fetchedCounter.Add(ctx, int64(n), sourceAttr(source))
	}
}

func recordTransition(ctx context.Context, source string, to CircuitBreakerState) {
	meterOnce.Do(initMeter)
	if transitionsCounter == nil {
		return
	}

	transitionsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("state", to.String()),
	))
}

func recordRejection(ctx context.Context, source string) {
	meterOnce.Do(initMeter)
	if rejectionsCounter == nil {
		return
	}

	rejectionsCounter.Add(ctx, 1, sourceAttr(source))
}

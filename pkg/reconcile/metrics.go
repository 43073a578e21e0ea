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

package reconcile

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "hostsync.reconcile"

	metricRecordsTotal = "hostsync_reconcile_records_total"
	metricFailedTotal  = "hostsync_reconcile_failures_total"
)

var (
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	recordsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	failuresCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	records, err := meter.Int64Counter(
		metricRecordsTotal,
		metric.WithDescription("Host records processed by reconcile, by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}
	recordsCounter = records

	failures, err := meter.Int64Counter(
		metricFailedTotal,
		metric.WithDescription("Reconcile batches stopped by a store failure"),
	)
	if err != nil {
		otel.Handle(err)
	}
	failuresCounter = failures
}

func recordStats(ctx context.Context, stats Stats) {
	meterOnce.Do(initMeter)
	if recordsCounter == nil {
		return
	}

	for outcome, n := range map[string]int{
		"inserted": stats.Inserted,
		"merged":   stats.Merged,
		"skipped":  stats.Skipped,
	} {
		if n == 0 {
			continue
		}

		recordsCounter.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func recordFailure(ctx context.Context, op Op) {
	meterOnce.Do(initMeter)
	if failuresCounter == nil {
		return
	}

	failuresCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("op", string(op))))
}

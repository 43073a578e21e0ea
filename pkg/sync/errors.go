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

import "errors"

var (
	ErrCircuitOpen        = errors.New("circuit breaker is open")
	ErrSourceFetchFailed  = errors.New("source fetch failed")
	errNoSources          = errors.New("at least one source must be configured")
	errNilSource          = errors.New("source config is nil")
	errUnsupportedSource  = errors.New("unsupported source type")
	errUnsupportedStore   = errors.New("unsupported store type")
	errStoreHostRequired  = errors.New("postgres store needs url or host")
	errNegativeTimeout    = errors.New("timeouts must not be negative")
	errNilReconciler      = errors.New("reconciler is required")
	errDuplicateFetcher   = errors.New("duplicate fetcher for source")
	errNegativePagination = errors.New("skip, page_size and max_pages must not be negative")
)

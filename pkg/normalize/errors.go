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

package normalize

import "errors"

var (
	// ErrUnknownSource is returned for a source tag no normalizer handles.
	ErrUnknownSource = errors.New("unknown source")

	// ErrMalformedRecord is returned when a raw record is not a JSON object
	// of the expected shape.
	ErrMalformedRecord = errors.New("malformed record")
)

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
	"errors"
	"fmt"
	"strings"

	"github.com/carverauto/hostsync/pkg/models"
)

// ErrReconcileInProgress is returned when Reconcile is called while another
// batch is still running on the same Reconciler.
var ErrReconcileInProgress = errors.New("reconcile already in progress")

// Op names the store call that failed.
type Op string

const (
	OpLookup  Op = "lookup"
	OpInsert  Op = "insert"
	OpReplace Op = "replace"
)

// RecordError reports the batch record whose store call failed, with enough of
// its identity to replay it by hand. It unwraps to the store error.
type RecordError struct {
	Index      int
	Hostname   *string
	ExternalIP *string
	LocalIP    *string
	MACAddress *string
	Op         Op
	Err        error
}

func newRecordError(index int, rec *models.HostRecord, op Op, err error) *RecordError {
	return &RecordError{
		Index:      index,
		Hostname:   rec.Hostname,
		ExternalIP: rec.ExternalIP,
		LocalIP:    rec.LocalIP,
		MACAddress: rec.MACAddress,
		Op:         op,
		Err:        err,
	}
}

func (e *RecordError) Error() string {
	var ids []string

	for _, f := range []struct {
		name  string
		value *string
	}{
		{models.FieldHostname, e.Hostname},
		{models.FieldExternalIP, e.ExternalIP},
		{models.FieldLocalIP, e.LocalIP},
		{models.FieldMACAddress, e.MACAddress},
	} {
		if f.value != nil {
			ids = append(ids, fmt.Sprintf("%s=%q", f.name, *f.value))
		}
	}

	return fmt.Sprintf("record %d [%s]: %s failed: %v", e.Index, strings.Join(ids, " "), e.Op, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

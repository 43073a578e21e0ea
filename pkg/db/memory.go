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

package db

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/carverauto/hostsync/pkg/models"
)

// MemoryStore keeps hosts in insertion order. Records are cloned on the way in
// and out so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	hosts []*models.HostRecord
	byID  map[string]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

var (
	_ Store        = (*MemoryStore)(nil)
	_ MatchCounter = (*MemoryStore)(nil)
)

func (m *MemoryStore) Find(ctx context.Context, clauses []Clause) (*models.HostRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.hosts {
		if matches(h, clauses) {
			return h.Clone(), nil
		}
	}

	return nil, nil
}

func (m *MemoryStore) CountMatches(ctx context.Context, clauses []Clause) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0

	for _, h := range m.hosts {
		if matches(h, clauses) {
			n++
		}
	}

	return n, nil
}

func (m *MemoryStore) Replace(ctx context.Context, id string, rec *models.HostRecord) error {
	if rec == nil {
		return ErrHostNil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHostNotFound, id)
	}

	stored := rec.Clone()
	stored.ID = id
	m.hosts[idx] = stored

	return nil
}

func (m *MemoryStore) Insert(ctx context.Context, rec *models.HostRecord) error {
	if rec == nil {
		return ErrHostNil
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	if _, exists := m.byID[rec.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", ErrStoreUnavailable, rec.ID)
	}

	m.byID[rec.ID] = len(m.hosts)
	m.hosts = append(m.hosts, rec.Clone())

	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*models.HostRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*models.HostRecord, 0, len(m.hosts))
	for _, h := range m.hosts {
		out = append(out, h.Clone())
	}

	return out, nil
}

// Len reports the number of stored hosts.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.hosts)
}

func matches(rec *models.HostRecord, clauses []Clause) bool {
	for _, c := range clauses {
		if v := rec.StringField(c.Field); v != nil && *v == c.Value {
			return true
		}
	}

	return false
}

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

// Package db defines the host store contracts and their implementations.
package db

import (
	"context"

	"github.com/carverauto/hostsync/pkg/models"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/carverauto/hostsync/pkg/db Store

// Clause is one "field equals value" term of an OR-combined match query.
type Clause struct {
	Field string
	Value string
}

// Lookup finds the first stored host matching any of the clauses. It returns
// nil, nil when nothing matches.
type Lookup interface {
	Find(ctx context.Context, clauses []Clause) (*models.HostRecord, error)
}

// MatchCounter is implemented by lookups that can report how many stored hosts
// match a clause set.
type MatchCounter interface {
	CountMatches(ctx context.Context, clauses []Clause) (int, error)
}

// Reader lists every stored host in store order.
type Reader interface {
	List(ctx context.Context) ([]*models.HostRecord, error)
}

// Store is the persistence surface the reconciler writes through.
type Store interface {
	Lookup
	Reader

	// Replace overwrites the whole stored document with the given id.
	Replace(ctx context.Context, id string, rec *models.HostRecord) error

	// Insert adds a new document. When rec.ID is empty a UUID is assigned to it.
	Insert(ctx context.Context, rec *models.HostRecord) error
}

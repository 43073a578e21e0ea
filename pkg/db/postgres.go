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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carverauto/hostsync/pkg/dates"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
)

// Querier is the slice of a pgx pool or connection the PostgreSQL store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	selectHostColumns = `SELECT id::text, doc FROM hosts`

	insertHostSQL = `
INSERT INTO hosts (id, hostname, external_ip, local_ip, mac_address, doc)
VALUES ($1, $2, $3, $4, $5, $6)`

	replaceHostSQL = `
UPDATE hosts
SET hostname = $2, external_ip = $3, local_ip = $4, mac_address = $5, doc = $6, updated_at = now()
WHERE id = $1`
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS hosts (
	seq         BIGSERIAL,
	id          UUID PRIMARY KEY,
	hostname    TEXT,
	external_ip TEXT,
	local_ip    TEXT,
	mac_address TEXT,
	doc         JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS hosts_seq_idx ON hosts (seq)`,
	`CREATE INDEX IF NOT EXISTS hosts_hostname_idx ON hosts (hostname)`,
	`CREATE INDEX IF NOT EXISTS hosts_external_ip_idx ON hosts (external_ip)`,
	`CREATE INDEX IF NOT EXISTS hosts_local_ip_idx ON hosts (local_ip)`,
	`CREATE INDEX IF NOT EXISTS hosts_mac_address_idx ON hosts (mac_address)`,
}

// matchColumns maps identity fields onto their indexed columns. Only these
// fields may appear in a lookup clause.
var matchColumns = map[string]string{
	models.FieldHostname:   "hostname",
	models.FieldExternalIP: "external_ip",
	models.FieldLocalIP:    "local_ip",
	models.FieldMACAddress: "mac_address",
}

// PGStore keeps one JSONB document per host. The identity fields are copied
// into their own columns so lookups can use an index.
type PGStore struct {
	db     Querier
	logger logger.Logger
}

var (
	_ Store        = (*PGStore)(nil)
	_ MatchCounter = (*PGStore)(nil)
)

// NewPGStore wraps a pgx pool (or anything with the same query surface).
func NewPGStore(db Querier, log logger.Logger) *PGStore {
	if log == nil {
		log = logger.Global()
	}

	return &PGStore{db: db, logger: log}
}

// Migrate creates the hosts table and its indexes if they do not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: migrate: %w", ErrStoreUnavailable, err)
		}
	}

	s.logger.Debug().Int("statements", len(migrations)).Msg("host schema ready")

	return nil
}

func whereClause(clauses []Clause) (string, []any, error) {
	terms := make([]string, 0, len(clauses))
	args := make([]any, 0, len(clauses))

	for _, c := range clauses {
		column, ok := matchColumns[c.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedClause, c.Field)
		}

		args = append(args, c.Value)
		terms = append(terms, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	return strings.Join(terms, " OR "), args, nil
}

func (s *PGStore) Find(ctx context.Context, clauses []Clause) (*models.HostRecord, error) {
	if len(clauses) == 0 {
		return nil, nil
	}

	where, args, err := whereClause(clauses)
	if err != nil {
		return nil, err
	}

	query := selectHostColumns + " WHERE " + where + " ORDER BY seq LIMIT 1"

	rec, err := scanHost(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: find host: %w", ErrStoreUnavailable, err)
	}

	return rec, nil
}

func (s *PGStore) CountMatches(ctx context.Context, clauses []Clause) (int, error) {
	if len(clauses) == 0 {
		return 0, nil
	}

	where, args, err := whereClause(clauses)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM hosts WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count hosts: %w", ErrStoreUnavailable, err)
	}

	return int(n), nil
}

func (s *PGStore) Replace(ctx context.Context, id string, rec *models.HostRecord) error {
	if rec == nil {
		return ErrHostNil
	}

	hostID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrHostNotFound, id)
	}

	args, err := hostArgs(hostID, rec)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, replaceHostSQL, args...)
	if err != nil {
		return fmt.Errorf("%w: replace host: %w", ErrStoreUnavailable, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrHostNotFound, id)
	}

	return nil
}

func (s *PGStore) Insert(ctx context.Context, rec *models.HostRecord) error {
	if rec == nil {
		return ErrHostNil
	}

	hostID := uuid.New()

	if rec.ID != "" {
		parsed, err := uuid.Parse(rec.ID)
		if err != nil {
			return fmt.Errorf("%w: host id %q is not a uuid", ErrStoreUnavailable, rec.ID)
		}

		hostID = parsed
	}

	args, err := hostArgs(hostID, rec)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, insertHostSQL, args...); err != nil {
		return fmt.Errorf("%w: insert host: %w", ErrStoreUnavailable, err)
	}

	rec.ID = hostID.String()

	return nil
}

func (s *PGStore) List(ctx context.Context) ([]*models.HostRecord, error) {
	rows, err := s.db.Query(ctx, selectHostColumns+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("%w: list hosts: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []*models.HostRecord

	for rows.Next() {
		rec, err := scanHost(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: list hosts: %w", ErrStoreUnavailable, err)
		}

		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list hosts: %w", ErrStoreUnavailable, err)
	}

	return out, nil
}

// hostArgs renders the positional arguments shared by insert and replace. The
// stored document never carries the id; the column is authoritative.
func hostArgs(id uuid.UUID, rec *models.HostRecord) ([]any, error) {
	doc := rec.Clone()
	doc.ID = ""

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode host document: %w", err)
	}

	return []any{
		id,
		rec.Hostname,
		rec.ExternalIP,
		rec.LocalIP,
		rec.MACAddress,
		payload,
	}, nil
}

func scanHost(row pgx.Row) (*models.HostRecord, error) {
	var (
		id  string
		doc []byte
	)

	if err := row.Scan(&id, &doc); err != nil {
		return nil, err
	}

	rec := &models.HostRecord{}
	if err := json.Unmarshal(doc, rec); err != nil {
		return nil, fmt.Errorf("decode host %s: %w", id, err)
	}

	rec.ID = id
	restoreInstants(rec)

	return rec, nil
}

// restoreInstants turns the RFC 3339 text JSONB hands back into UTC instants
// again. Values that do not parse are left as stored.
func restoreInstants(rec *models.HostRecord) {
	if t, err := dates.ToInstant(rec.FirstSeen); err == nil {
		rec.FirstSeen = t
	}

	if t, err := dates.ToInstant(rec.LastSeen); err == nil {
		rec.LastSeen = t
	}
}

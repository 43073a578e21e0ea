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

package main

import (
	"context"
	"fmt"

	"github.com/carverauto/hostsync/pkg/db"
	"github.com/carverauto/hostsync/pkg/logger"
	"github.com/carverauto/hostsync/pkg/models"
)

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (db.Store, func(), error) {
	switch cfg.Type {
	case models.StorePostgres:
		pool, err := db.NewPool(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}

		store := db.NewPGStore(pool, log)

		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate host store: %w", err)
		}

		return store, pool.Close, nil
	default:
		log.Warn().Msg("Using the in-memory host store; nothing is kept after exit")

		return db.NewMemoryStore(), func() {}, nil
	}
}

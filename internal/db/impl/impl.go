// Package impl is the sqlite implementation of the storage contracts.
package impl

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/config"
	"github.com/lacertae/aster/internal/db"
)

type dbImpl struct {
	Config config.Configuration
	db     *sql.DB
}

func New(config config.Configuration, d *sql.DB) db.DB {
	return &dbImpl{
		Config: config,
		db:     d,
	}
}

// handleError maps driver-level errors to the higher level sentinels callers
// branch on.
func (d *dbImpl) handleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return db.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return db.ErrConflict
	}
	log.Error().Err(err).Msg("database error")
	return err
}

func marshalStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return string(b)
}

func unmarshalStrings(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	return values
}

func marshalIDs(ids []uuid.UUID) string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return marshalStrings(values)
}

func unmarshalIDs(raw string) []uuid.UUID {
	values := unmarshalStrings(raw)
	if len(values) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"fertilizer-guide/internal/reference"
)

const upsertRequirement = `
	INSERT INTO crop_requirements (crop, n, p, k)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (crop) DO UPDATE SET n = excluded.n, p = excluded.p, k = excluded.k, updated_at = CURRENT_TIMESTAMP`

// seedRequirements upserts every row of tbl into crop_requirements in one
// transaction and returns the number of rows written.
func seedRequirements(db *sqlx.DB, tbl *reference.Table, logger *zap.Logger) (int, error) {
	logger.Info("[seed] Writing reference table", zap.Int("crops", tbl.Len()))

	tx, err := db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(upsertRequirement)
	n := 0
	for _, r := range tbl.Rows() {
		if _, err := tx.Exec(query, r.Crop, r.N, r.P, r.K); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", r.Crop, err)
		}
		logger.Debug("[seed] Upserted crop", zap.String("crop", r.Crop))
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	logger.Info("[seed] Completed reference table seed", zap.Int("rows", n))
	return n, nil
}

package db

import (
	"context"
	"fmt"

	intconfig "familytrip/internal/config"

	"github.com/jmoiron/sqlx"
)

// Column is a column that may be missing from tables created by older releases.
type Column struct {
	Name       string
	MySQLType  string
	SQLiteType string
}

func HasTable(ctx context.Context, db *sqlx.DB, table string) (bool, error) {
	var n int
	var err error
	if db.DriverName() == intconfig.DriverSQLite {
		err = db.GetContext(ctx, &n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	} else {
		err = db.GetContext(ctx, &n, `
			SELECT COUNT(*)
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			  AND table_name = ?
		`, table)
	}
	return n > 0, err
}

func HasColumn(ctx context.Context, db *sqlx.DB, table, column string) (bool, error) {
	var n int
	var err error
	if db.DriverName() == intconfig.DriverSQLite {
		err = db.GetContext(ctx, &n, `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column)
	} else {
		err = db.GetContext(ctx, &n, `
			SELECT COUNT(*)
			FROM information_schema.columns
			WHERE table_schema = DATABASE()
			  AND table_name = ?
			  AND column_name = ?
		`, table, column)
	}
	return n > 0, err
}

// AddMissingColumns issues ALTER TABLE for every listed column the table lacks.
func AddMissingColumns(ctx context.Context, db *sqlx.DB, table string, cols []Column) error {
	for _, col := range cols {
		ok, err := HasColumn(ctx, db, table, col.Name)
		if err != nil {
			return fmt.Errorf("inspect %s.%s: %w", table, col.Name, err)
		}
		if ok {
			continue
		}
		typ := col.MySQLType
		if db.DriverName() == intconfig.DriverSQLite {
			typ = col.SQLiteType
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.Name, typ)); err != nil {
			return fmt.Errorf("add %s.%s: %w", table, col.Name, err)
		}
	}
	return nil
}

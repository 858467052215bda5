/*
Package sqlite provides a SQLite-backed table.Store.

PURPOSE:
  Persists the row tables of a provider bundle so that the table bundle can
  be served from a file instead of formulas. A store holds exactly one
  bundle; saving replaces it atomically.

KEY TABLES:
  bundle_meta:      Single row: source identifiers, base year, quarter
                    mapping, contribution rule and special index (JSON)
  annual_index:     One valorization index per year
  quarterly_index:  One valorization index per (year, quarter)
  age_bounds:       Retirement ages covered by the life table, per gender
  life_table:       Remaining years per (gender, age, window year)
  rate_series:      Yearly growth rates: wage, cpi, sub_account

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Reads are only issued at bundle
  load time, so contention is negligible.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer.

USAGE:
  store, err := sqlite.New("./data/tables.db")
  if err != nil {
      return err
  }
  defer store.Close()

  providers, err := table.Load(ctx, store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - providers/table/tables.go: Row types and the Store interface
  - cmd/server/seed.go: Fills a store from the demo bundle
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kamio90/zus-retirement-simulator-sub000/providers/table"
)

// Rate series names in rate_series.
const (
	seriesWage       = "wage"
	seriesCPI        = "cpi"
	seriesSubAccount = "sub_account"
)

// Store implements table.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bundle_meta (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		meta_json TEXT NOT NULL,
		month_quarters_json TEXT NOT NULL,
		contribution_json TEXT NOT NULL,
		special_json TEXT,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS annual_index (
		year INTEGER PRIMARY KEY,
		fraction REAL NOT NULL,
		index_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quarterly_index (
		year INTEGER NOT NULL,
		quarter INTEGER NOT NULL CHECK (quarter BETWEEN 1 AND 4),
		fraction REAL NOT NULL,
		index_id TEXT NOT NULL,
		PRIMARY KEY (year, quarter)
	);

	CREATE TABLE IF NOT EXISTS age_bounds (
		gender TEXT PRIMARY KEY,
		min_age INTEGER NOT NULL,
		max_age INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS life_table (
		gender TEXT NOT NULL,
		age INTEGER NOT NULL,
		window_year INTEGER NOT NULL,
		years REAL NOT NULL,
		table_id TEXT NOT NULL,
		PRIMARY KEY (gender, age, window_year)
	);

	CREATE TABLE IF NOT EXISTS rate_series (
		series TEXT NOT NULL,
		year INTEGER NOT NULL,
		rate REAL NOT NULL,
		PRIMARY KEY (series, year)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SAVE
// =============================================================================

// SaveTables replaces the stored bundle in a single transaction.
func (s *Store) SaveTables(ctx context.Context, t *table.Tables) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, tbl := range []string{"bundle_meta", "annual_index", "quarterly_index", "age_bounds", "life_table", "rate_series"} {
		if _, err := sqlTx.ExecContext(ctx, "DELETE FROM "+tbl); err != nil {
			return fmt.Errorf("failed to clear %s: %w", tbl, err)
		}
	}

	if err := saveMeta(ctx, sqlTx, t); err != nil {
		return err
	}

	if err := insertRows(ctx, sqlTx, "INSERT INTO annual_index (year, fraction, index_id) VALUES (?, ?, ?)", len(t.Annual), func(i int) []any {
		r := t.Annual[i]
		return []any{r.Year, r.Fraction, r.ID}
	}); err != nil {
		return err
	}

	if err := insertRows(ctx, sqlTx, "INSERT INTO quarterly_index (year, quarter, fraction, index_id) VALUES (?, ?, ?, ?)", len(t.Quarterly), func(i int) []any {
		r := t.Quarterly[i]
		return []any{r.Year, r.Quarter, r.Fraction, r.ID}
	}); err != nil {
		return err
	}

	if err := insertRows(ctx, sqlTx, "INSERT INTO age_bounds (gender, min_age, max_age) VALUES (?, ?, ?)", len(t.AgeBounds), func(i int) []any {
		r := t.AgeBounds[i]
		return []any{r.Gender, r.Min, r.Max}
	}); err != nil {
		return err
	}

	if err := insertRows(ctx, sqlTx, "INSERT INTO life_table (gender, age, window_year, years, table_id) VALUES (?, ?, ?, ?, ?)", len(t.Life), func(i int) []any {
		r := t.Life[i]
		return []any{r.Gender, r.Age, r.WindowYear, r.Years, r.TableID}
	}); err != nil {
		return err
	}

	for name, rows := range map[string][]table.RateRow{
		seriesWage:       t.WageGrowth,
		seriesCPI:        t.CPI,
		seriesSubAccount: t.SubAccount,
	} {
		if err := insertRows(ctx, sqlTx, "INSERT INTO rate_series (series, year, rate) VALUES (?, ?, ?)", len(rows), func(i int) []any {
			return []any{name, rows[i].Year, rows[i].Rate}
		}); err != nil {
			return err
		}
	}

	return sqlTx.Commit()
}

func saveMeta(ctx context.Context, tx *sql.Tx, t *table.Tables) error {
	metaJSON, err := json.Marshal(t.Meta)
	if err != nil {
		return fmt.Errorf("failed to encode meta: %w", err)
	}
	quartersJSON, err := json.Marshal(t.MonthQuarters)
	if err != nil {
		return fmt.Errorf("failed to encode month quarters: %w", err)
	}
	ruleJSON, err := json.Marshal(t.Contribution)
	if err != nil {
		return fmt.Errorf("failed to encode contribution rule: %w", err)
	}
	var special sql.NullString
	if t.Special != nil {
		b, err := json.Marshal(t.Special)
		if err != nil {
			return fmt.Errorf("failed to encode special index: %w", err)
		}
		special = sql.NullString{String: string(b), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bundle_meta (id, meta_json, month_quarters_json, contribution_json, special_json, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
	`, string(metaJSON), string(quartersJSON), string(ruleJSON), special, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save meta: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// LoadTables reads the stored bundle. It returns table.ErrNoTables when
// nothing has been saved yet.
func (s *Store) LoadTables(ctx context.Context) (*table.Tables, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := &table.Tables{}
	if err := s.loadMeta(ctx, t); err != nil {
		return nil, err
	}

	err := s.queryRows(ctx, "SELECT year, fraction, index_id FROM annual_index ORDER BY year", func(rows *sql.Rows) error {
		var r table.AnnualRow
		if err := rows.Scan(&r.Year, &r.Fraction, &r.ID); err != nil {
			return err
		}
		t.Annual = append(t.Annual, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.queryRows(ctx, "SELECT year, quarter, fraction, index_id FROM quarterly_index ORDER BY year, quarter", func(rows *sql.Rows) error {
		var r table.QuarterlyRow
		if err := rows.Scan(&r.Year, &r.Quarter, &r.Fraction, &r.ID); err != nil {
			return err
		}
		t.Quarterly = append(t.Quarterly, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.queryRows(ctx, "SELECT gender, min_age, max_age FROM age_bounds ORDER BY gender", func(rows *sql.Rows) error {
		var r table.AgeBoundsRow
		if err := rows.Scan(&r.Gender, &r.Min, &r.Max); err != nil {
			return err
		}
		t.AgeBounds = append(t.AgeBounds, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.queryRows(ctx, "SELECT gender, age, window_year, years, table_id FROM life_table ORDER BY gender, age, window_year", func(rows *sql.Rows) error {
		var r table.LifeRow
		if err := rows.Scan(&r.Gender, &r.Age, &r.WindowYear, &r.Years, &r.TableID); err != nil {
			return err
		}
		t.Life = append(t.Life, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.queryRows(ctx, "SELECT series, year, rate FROM rate_series ORDER BY series, year", func(rows *sql.Rows) error {
		var name string
		var r table.RateRow
		if err := rows.Scan(&name, &r.Year, &r.Rate); err != nil {
			return err
		}
		switch name {
		case seriesWage:
			t.WageGrowth = append(t.WageGrowth, r)
		case seriesCPI:
			t.CPI = append(t.CPI, r)
		case seriesSubAccount:
			t.SubAccount = append(t.SubAccount, r)
		default:
			return fmt.Errorf("unknown rate series %q", name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Store) loadMeta(ctx context.Context, t *table.Tables) error {
	var metaJSON, quartersJSON, ruleJSON string
	var special sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT meta_json, month_quarters_json, contribution_json, special_json
		FROM bundle_meta WHERE id = 1
	`).Scan(&metaJSON, &quartersJSON, &ruleJSON, &special)
	if err == sql.ErrNoRows {
		return table.ErrNoTables
	}
	if err != nil {
		return fmt.Errorf("failed to load meta: %w", err)
	}

	if err := json.Unmarshal([]byte(metaJSON), &t.Meta); err != nil {
		return fmt.Errorf("failed to decode meta: %w", err)
	}
	if err := json.Unmarshal([]byte(quartersJSON), &t.MonthQuarters); err != nil {
		return fmt.Errorf("failed to decode month quarters: %w", err)
	}
	if err := json.Unmarshal([]byte(ruleJSON), &t.Contribution); err != nil {
		return fmt.Errorf("failed to decode contribution rule: %w", err)
	}
	if special.Valid {
		t.Special = &table.SpecialRow{}
		if err := json.Unmarshal([]byte(special.String), t.Special); err != nil {
			return fmt.Errorf("failed to decode special index: %w", err)
		}
	}
	return nil
}

func (s *Store) queryRows(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
	}
	return rows.Err()
}

var _ table.Store = (*Store)(nil)

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jgoulah/netdash/internal/dataset"
	"github.com/jgoulah/netdash/internal/query"
	"github.com/jgoulah/netdash/pkg/models"
	_ "modernc.org/sqlite"
)

// ErrReadOnly is returned by Run for anything but a SELECT or WITH query
var ErrReadOnly = errors.New("only SELECT queries are allowed")

// DB wraps an in-memory SQLite mirror of the loaded tables
type DB struct {
	conn *sql.DB
}

// New creates an in-memory database and initializes the schema
func New() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage (
		country TEXT NOT NULL,
		country_code TEXT,
		year INTEGER NOT NULL,
		usage_metric REAL NOT NULL,
		PRIMARY KEY (country, year)
	);
	CREATE TABLE IF NOT EXISTS indicators (
		country TEXT NOT NULL,
		year INTEGER NOT NULL,
		gdp_per_capita REAL,
		population INTEGER,
		access_to_electricity REAL,
		PRIMARY KEY (country, year)
	);
	CREATE INDEX IF NOT EXISTS idx_usage_year ON usage(year);
	CREATE INDEX IF NOT EXISTS idx_indicators_year ON indicators(year);
	CREATE VIEW IF NOT EXISTS joined AS
		SELECT u.country, u.country_code, u.year, u.usage_metric,
		       i.gdp_per_capita, i.population, i.access_to_electricity
		FROM usage u
		JOIN indicators i ON i.country = u.country AND i.year = u.year;
	`

	_, err := db.conn.Exec(schema)
	return err
}

// LoadTables copies both tables into the database and then switches the
// connection to query-only mode
func (db *DB) LoadTables(ctx context.Context, t *dataset.Tables) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting load: %w", err)
	}
	defer tx.Rollback()

	usageStmt, err := tx.PrepareContext(ctx, `INSERT INTO usage (country, country_code, year, usage_metric) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing usage insert: %w", err)
	}
	defer usageStmt.Close()

	for _, r := range t.UsageRecords() {
		if _, err := usageStmt.ExecContext(ctx, r.Country, nullString(r.CountryCode), r.Year, r.UsageMetric); err != nil {
			return fmt.Errorf("inserting usage %s %d: %w", r.Country, r.Year, err)
		}
	}

	indStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO indicators (country, year, gdp_per_capita, population, access_to_electricity)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing indicators insert: %w", err)
	}
	defer indStmt.Close()

	for _, r := range t.IndicatorRecords() {
		if _, err := indStmt.ExecContext(ctx, r.Country, r.Year, nullFloat(r.GDPPerCapita), nullPopulation(r), nullFloat(r.AccessToElectricity)); err != nil {
			return fmt.Errorf("inserting indicators %s %d: %w", r.Country, r.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, `PRAGMA query_only = ON`); err != nil {
		return fmt.Errorf("locking database: %w", err)
	}
	return nil
}

// Joined returns the joined rows matching the filter with the same
// semantics as the query engine
func (db *DB) Joined(ctx context.Context, regions query.Regions, f query.Filter) ([]models.JoinedRecord, error) {
	all := query.IsAllRegions(f.Region)
	var countries []string
	if !all {
		var err error
		if countries, err = regions.Countries(f.Region); err != nil {
			return nil, err
		}
	}

	results := []models.JoinedRecord{}
	if f.StartYear > f.EndYear || (!all && len(countries) == 0) {
		return results, nil
	}

	q := `
	SELECT country, country_code, year, usage_metric, gdp_per_capita, population, access_to_electricity
	FROM joined
	WHERE year BETWEEN ? AND ?
	`
	args := []any{f.StartYear, f.EndYear}
	if !all {
		q += ` AND country IN (?` + strings.Repeat(`, ?`, len(countries)-1) + `)`
		for _, c := range countries {
			args = append(args, c)
		}
	}
	q += ` ORDER BY country, year`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying joined rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.JoinedRecord
		var code sql.NullString
		var gdp, elec sql.NullFloat64
		var pop sql.NullInt64

		if err := rows.Scan(&r.Country, &code, &r.Year, &r.UsageMetric, &gdp, &pop, &elec); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		r.CountryCode = code.String
		r.GDPPerCapita = floatOrNaN(gdp)
		r.AccessToElectricity = floatOrNaN(elec)
		r.Population = pop.Int64
		r.PopulationMissing = !pop.Valid
		results = append(results, r)
	}

	return results, rows.Err()
}

// Result is the tabular output of an ad-hoc query
type Result struct {
	Columns []string
	Rows    [][]string
}

// Run executes a read-only ad-hoc query and renders every value as text
func (db *DB) Run(ctx context.Context, stmt string) (*Result, error) {
	trimmed := strings.ToLower(strings.TrimSpace(stmt))
	if !strings.HasPrefix(trimmed, "select") && !strings.HasPrefix(trimmed, "with") {
		return nil, ErrReadOnly
	}

	rows, err := db.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	res := &Result{Columns: cols}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = formatValue(v)
		}
		res.Rows = append(res.Rows, out)
	}

	return res, rows.Err()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func nullPopulation(r models.IndicatorRecord) any {
	if r.PopulationMissing {
		return nil
	}
	return r.Population
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

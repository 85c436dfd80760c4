package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation    = "23505"
	mysqlDuplicateEntry  = 1062
	selectRateColumnsPG  = `currency_from, currency_to, exchange_rate::text, rate_hour`
	selectRateColumnsSQL = `currency_from, currency_to, exchange_rate, rate_hour`
)

// sqlDialect carries the statements and error classification that differ between SQL engines.
type sqlDialect struct {
	name              string
	insert            string
	byPairAndTime     string
	latestByPair      string
	distinctCodes     string
	distinctPairs     string
	isUniqueViolation func(error) bool
}

var postgresDialect = sqlDialect{
	name: "postgres",
	insert: `INSERT INTO exchange_rates (currency_from, currency_to, exchange_rate, rate_hour)
              VALUES ($1, $2, $3::numeric, $4)`,
	byPairAndTime: `SELECT ` + selectRateColumnsPG + `
              FROM exchange_rates
              WHERE ((currency_from=$1 AND currency_to=$2) OR (currency_from=$3 AND currency_to=$4))
                AND rate_hour=$5
              LIMIT 1`,
	latestByPair: `SELECT ` + selectRateColumnsPG + `
              FROM exchange_rates
              WHERE (currency_from=$1 AND currency_to=$2) OR (currency_from=$3 AND currency_to=$4)
              ORDER BY rate_hour DESC
              LIMIT 1`,
	distinctCodes: `SELECT currency_from FROM exchange_rates
              UNION
              SELECT currency_to FROM exchange_rates
              ORDER BY 1`,
	distinctPairs: `SELECT DISTINCT currency_from, currency_to
              FROM exchange_rates
              ORDER BY currency_from, currency_to`,
	isUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
	},
}

var mysqlDialect = sqlDialect{
	name: "mysql",
	insert: `INSERT INTO exchange_rates (currency_from, currency_to, exchange_rate, rate_hour)
              VALUES (?, ?, ?, ?)`,
	byPairAndTime: `SELECT ` + selectRateColumnsSQL + `
              FROM exchange_rates
              WHERE ((currency_from=? AND currency_to=?) OR (currency_from=? AND currency_to=?))
                AND rate_hour=?
              LIMIT 1`,
	latestByPair: `SELECT ` + selectRateColumnsSQL + `
              FROM exchange_rates
              WHERE (currency_from=? AND currency_to=?) OR (currency_from=? AND currency_to=?)
              ORDER BY rate_hour DESC
              LIMIT 1`,
	distinctCodes: `SELECT currency_from FROM exchange_rates
              UNION
              SELECT currency_to FROM exchange_rates
              ORDER BY 1`,
	distinctPairs: `SELECT DISTINCT currency_from, currency_to
              FROM exchange_rates
              ORDER BY currency_from, currency_to`,
	isUniqueViolation: func(err error) bool {
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
	},
}

// SQLRateRepository is a RateRepository backed by a database/sql connection pool.
type SQLRateRepository struct {
	db      *sql.DB
	dialect sqlDialect
}

// NewPostgresRateRepository creates a RateRepository for PostgreSQL (pgx driver).
func NewPostgresRateRepository(db *sql.DB) *SQLRateRepository {
	return &SQLRateRepository{db: db, dialect: postgresDialect}
}

// NewMySQLRateRepository creates a RateRepository for MySQL.
func NewMySQLRateRepository(db *sql.DB) *SQLRateRepository {
	return &SQLRateRepository{db: db, dialect: mysqlDialect}
}

var _ RateRepository = (*SQLRateRepository)(nil)

// Insert writes a canonical record. The table's unique key is the only duplicate guard,
// so concurrent writers racing on the same pair and hour cannot both succeed.
func (r *SQLRateRepository) Insert(ctx context.Context, rec RateRecord) error {
	_, err := r.db.ExecContext(ctx, r.dialect.insert,
		rec.CurrencyFrom, rec.CurrencyTo, RateString(rec.Rate), rec.Timestamp.UTC())
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert exchange rate (%s): %w", r.dialect.name, err)
	}
	return nil
}

// QueryByPairAndTime returns the record for {a, b} at exactly the given hour.
func (r *SQLRateRepository) QueryByPairAndTime(ctx context.Context, a, b string, at time.Time) (*RateRecord, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.byPairAndTime, a, b, b, a, at.UTC())
	return scanRateRecord(row)
}

// QueryLatestByPair returns the most recent record for {a, b}.
func (r *SQLRateRepository) QueryLatestByPair(ctx context.Context, a, b string) (*RateRecord, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.latestByPair, a, b, b, a)
	return scanRateRecord(row)
}

// DistinctCodes returns every code found in either column.
func (r *SQLRateRepository) DistinctCodes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.distinctCodes)
	if err != nil {
		return nil, fmt.Errorf("query distinct codes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan currency code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// DistinctPairs returns every stored canonical pair ordered by (from, to).
func (r *SQLRateRepository) DistinctPairs(ctx context.Context) ([]Pair, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.distinctPairs)
	if err != nil {
		return nil, fmt.Errorf("query distinct pairs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var pairs []Pair
	for rows.Next() {
		var p Pair
		if err := rows.Scan(&p.From, &p.To); err != nil {
			return nil, fmt.Errorf("scan currency pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRateRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// scanRateRecord maps a single row into a RateRecord, returning (nil, nil) for sql.ErrNoRows.
func scanRateRecord(row *sql.Row) (*RateRecord, error) {
	var rec RateRecord
	var rate string

	err := row.Scan(&rec.CurrencyFrom, &rec.CurrencyTo, &rate, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan exchange rate: %w", err)
	}

	rec.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("parse stored rate %q: %w", rate, err)
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return &rec, nil
}

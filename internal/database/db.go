package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Alias1177/SignalBridge/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB is the order journal
type DB struct {
	*sql.DB
	driver string
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the params as a lib/pq connection string
func (p ConnectionParams) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// Open connects with driver, checks the connection and creates the schema
func Open(driver, dsn string) (*DB, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported journal driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one connection keeps :memory: databases shared and writes serialized
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	j := &DB{DB: db, driver: driver}
	if err := j.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

// createTables creates the necessary tables if they don't exist
func (db *DB) createTables() error {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if db.driver == DriverSQLite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS order_journal (
			id ` + idColumn + `,
			correlation_id TEXT NOT NULL,
			client_order_id TEXT NOT NULL,
			leg_index INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			direction TEXT NOT NULL,
			kind TEXT NOT NULL,
			volume DOUBLE PRECISION NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			stop_loss DOUBLE PRECISION NOT NULL,
			take_profit DOUBLE PRECISION,
			expiry TEXT NOT NULL,
			comment TEXT,
			profile TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT,
			ticket BIGINT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating order_journal: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS order_journal_correlation ON order_journal (correlation_id)`)
	return err
}

// rebind rewrites ? placeholders as $n for PostgreSQL
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// RecordLeg inserts one leg outcome and sets its ID
func (db *DB) RecordLeg(ctx context.Context, rec *models.OrderRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var tp sql.NullFloat64
	if rec.TakeProfit != nil {
		tp = sql.NullFloat64{Float64: *rec.TakeProfit, Valid: true}
	}

	query := db.rebind(`
		INSERT INTO order_journal (
			correlation_id, client_order_id, leg_index, symbol, direction, kind, volume,
			entry_price, stop_loss, take_profit, expiry, comment, profile, mode,
			status, reason, ticket, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	return db.QueryRowContext(ctx, query,
		rec.CorrelationID, rec.ClientOrderID, rec.LegIndex, rec.Symbol, string(rec.Direction), string(rec.Kind), rec.Volume,
		rec.EntryPrice, rec.StopLoss, tp, string(rec.Expiry), rec.Comment, rec.Profile, rec.Mode,
		string(rec.Status), rec.Reason, rec.Ticket, rec.CreatedAt,
	).Scan(&rec.ID)
}

const selectColumns = `
	SELECT
		id, correlation_id, client_order_id, leg_index, symbol, direction, kind, volume,
		entry_price, stop_loss, take_profit, expiry, comment, profile, mode,
		status, reason, ticket, created_at
	FROM order_journal
`

// OrdersByCorrelation returns every leg of one signal in leg order
func (db *DB) OrdersByCorrelation(ctx context.Context, correlationID string) ([]models.OrderRecord, error) {
	return db.query(ctx, selectColumns+` WHERE correlation_id = ? ORDER BY leg_index`, correlationID)
}

// RecentOrders returns the latest legs, newest first
func (db *DB) RecentOrders(ctx context.Context, limit int) ([]models.OrderRecord, error) {
	return db.query(ctx, selectColumns+` ORDER BY id DESC LIMIT ?`, limit)
}

func (db *DB) query(ctx context.Context, query string, args ...any) ([]models.OrderRecord, error) {
	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderRecord
	for rows.Next() {
		var (
			rec     models.OrderRecord
			tp      sql.NullFloat64
			comment sql.NullString
			reason  sql.NullString
			ticket  sql.NullInt64
		)
		if err := rows.Scan(
			&rec.ID, &rec.CorrelationID, &rec.ClientOrderID, &rec.LegIndex, &rec.Symbol, &rec.Direction, &rec.Kind, &rec.Volume,
			&rec.EntryPrice, &rec.StopLoss, &tp, &rec.Expiry, &comment, &rec.Profile, &rec.Mode,
			&rec.Status, &reason, &ticket, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		if tp.Valid {
			v := tp.Float64
			rec.TakeProfit = &v
		}
		rec.Comment = comment.String
		rec.Reason = reason.String
		rec.Ticket = ticket.Int64
		out = append(out, rec)
	}
	return out, rows.Err()
}

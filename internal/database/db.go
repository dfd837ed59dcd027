// Package database reads metered electricity usage from a sqlite database
// of daily readings and rolls it up into monthly usage entries.
package database

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jgoulah/carbonform/pkg/models"
)

// Reading is one metered usage row
type Reading struct {
	ID        int
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
	KWh       float64
	Service   string
}

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, creating the usage table if needed
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

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

// initSchema matches the layout written by meter scrapers
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS usage_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		kwh REAL NOT NULL,
		service TEXT NOT NULL,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0,
		UNIQUE(start_time, service)
	);
	CREATE INDEX IF NOT EXISTS idx_usage_date ON usage_data(date);
	CREATE INDEX IF NOT EXISTS idx_usage_service ON usage_data(service);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertReading stores a reading, ignoring duplicates of the same interval
func (db *DB) InsertReading(r Reading) error {
	return insertReading(db.conn, r)
}

func insertReading(ex execer, r Reading) error {
	query := `
	INSERT OR IGNORE INTO usage_data (date, start_time, end_time, kwh, service, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	var startTimeStr, endTimeStr string
	if !r.StartTime.IsZero() {
		startTimeStr = r.StartTime.Format("2006-01-02 15:04:05")
	} else {
		// daily rows still need a distinct key
		startTimeStr = r.Date.Format("2006-01-02") + " 00:00:00"
	}
	if !r.EndTime.IsZero() {
		endTimeStr = r.EndTime.Format("2006-01-02 15:04:05")
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := ex.Exec(query, r.Date.Format("2006-01-02"), startTimeStr, endTimeStr, r.KWh, r.Service, createdAt)
	if err != nil {
		return fmt.Errorf("inserting usage data: %w", err)
	}
	return nil
}

// Services lists the distinct services that have readings
func (db *DB) Services() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT service FROM usage_data ORDER BY service`)
	if err != nil {
		return nil, fmt.Errorf("querying services: %w", err)
	}
	defer rows.Close()

	var services []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// MonthlyUsage sums a service's readings by calendar month, oldest first.
// Cost is estimated from rate in dollars per kWh and rounded to cents.
func (db *DB) MonthlyUsage(service string, rate float64) ([]models.UsageEntry, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("invalid rate %v: must be a non-negative number", rate)
	}

	query := `
	SELECT substr(date, 1, 4) AS year, substr(date, 6, 2) AS month, SUM(kwh)
	FROM usage_data
	WHERE service = ?
	GROUP BY year, month
	ORDER BY year, month
	`

	rows, err := db.conn.Query(query, service)
	if err != nil {
		return nil, fmt.Errorf("querying monthly usage: %w", err)
	}
	defer rows.Close()

	var entries []models.UsageEntry
	for rows.Next() {
		var yearStr, monthStr string
		var kwh float64
		if err := rows.Scan(&yearStr, &monthStr, &kwh); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, fmt.Errorf("parsing year %q: %w", yearStr, err)
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return nil, fmt.Errorf("parsing month %q: %w", monthStr, err)
		}

		entries = append(entries, models.UsageEntry{
			Month: month,
			Year:  year,
			KWh:   math.Round(kwh*100) / 100,
			Cost:  math.Round(kwh*rate*100) / 100,
		})
	}

	return entries, rows.Err()
}

package database

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ParseReadingsCSV reads a utility usage export into readings for service.
// Rows are TYPE, DATE, START TIME, END TIME, USAGE. START and END may be
// empty for daily totals. Header and non-numeric usage rows are skipped.
func ParseReadingsCSV(r io.Reader, service string) ([]Reading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	const (
		dateIdx      = 1
		startTimeIdx = 2
		endTimeIdx   = 3
		usageIdx     = 4
	)

	var readings []Reading
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line++

		if len(record) <= usageIdx {
			continue
		}

		kwh, err := strconv.ParseFloat(strings.TrimSpace(record[usageIdx]), 64)
		if err != nil {
			continue
		}

		dateStr := strings.TrimSpace(record[dateIdx])
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", line, dateStr, err)
		}

		reading := Reading{Date: date, KWh: kwh, Service: service}
		if reading.StartTime, err = clockOn(date, record[startTimeIdx]); err != nil {
			return nil, fmt.Errorf("line %d: bad start time: %w", line, err)
		}
		if reading.EndTime, err = clockOn(date, record[endTimeIdx]); err != nil {
			return nil, fmt.Errorf("line %d: bad end time: %w", line, err)
		}
		readings = append(readings, reading)
	}

	return readings, nil
}

// clockOn places an HH:MM clock time on date, zero for an empty field
func clockOn(date time.Time, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

// InsertReadings stores readings in one transaction and returns how many were new
func (db *DB) InsertReadings(readings []Reading) (int, error) {
	before, err := db.count()
	if err != nil {
		return 0, err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	for _, r := range readings {
		if err := insertReading(tx, r); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing readings: %w", err)
	}

	after, err := db.count()
	if err != nil {
		return 0, err
	}
	return after - before, nil
}

func (db *DB) count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM usage_data`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return n, nil
}

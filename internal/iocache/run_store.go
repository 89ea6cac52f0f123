package iocache

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
)

// Table names for run tracking.
const (
	runsTable    = "burstline_runs"
	runDaysTable = "burstline_run_days"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{runDaysTable, getCreateRunDaysQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for burstline_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				subject VARCHAR(512) NOT NULL,
				total_days INT,
				max_level INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				subject TEXT NOT NULL,
				total_days INT,
				max_level INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				subject TEXT NOT NULL,
				total_days INTEGER,
				max_level INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateRunDaysQuery returns the CREATE TABLE query for burstline_run_days.
// Days are stored as YYYY-MM-DD text so every backend compares them the same way.
func getCreateRunDaysQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runDaysTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day VARCHAR(10) NOT NULL,
				offset_count INT NOT NULL,
				level INT NOT NULL,
				PRIMARY KEY (run_id, day)
			);
		`, quotedTableName)

	default: // SQLite and PostgreSQL
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				day TEXT NOT NULL,
				offset_count INTEGER NOT NULL,
				level INTEGER NOT NULL,
				PRIMARY KEY (run_id, day)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, subject string, configParams map[string]any) (int64, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := sonic.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, subject, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, subject, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, subject, config_params) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), subject, string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalDays, maxLevel int) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(rs.backend, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_days = $3, max_level = $4 WHERE run_id = $5`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_days = ?, max_level = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalDays, maxLevel, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordDays stores one row per day that has either offsets or a timeline entry.
// Days without a timeline entry are stored with level 0.
func (rs *RunStoreImpl) RecordDays(runID int64, counts []schema.DailyCount, timeline []schema.TimelineEntry) error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	type dayRow struct {
		count int
		level int
	}
	rows := make(map[string]*dayRow)
	for _, c := range counts {
		rows[c.Day.Format(contract.DateFormat)] = &dayRow{count: c.Count}
	}
	for _, e := range timeline {
		key := e.Boundary.Format(contract.DateFormat)
		if r, ok := rows[key]; ok {
			r.level = e.Level
		} else {
			rows[key] = &dayRow{level: e.Level}
		}
	}
	if len(rows) == 0 {
		return nil
	}

	days := make([]string, 0, len(rows))
	for day := range rows {
		days = append(days, day)
	}
	sort.Strings(days)

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, day, offset_count, level) VALUES (%s)`,
		quoteTableName(runDaysTable, rs.backend), placeholders(rs.backend, 4))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare day insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, day := range days {
		r := rows[day]
		if _, err := stmt.Exec(runID, day, r.count, r.level); err != nil {
			return fmt.Errorf("failed to insert day %s: %w", day, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		last, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = last

		oldest, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_days), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalDays); err != nil {
			return status, fmt.Errorf("failed to get total days: %w", err)
		}
	}

	for _, table := range []string{runsTable, runDaysTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, subject, total_days, max_level, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var totalDays, maxLevel sql.NullInt32

		if rs.backend == schema.SQLiteBackend {
			var startStr string
			var endStr sql.NullString
			if err := rows.Scan(&record.RunID, &startStr, &endStr, &record.DurationMs, &record.Subject, &totalDays, &maxLevel, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseStoredTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr.Valid {
				end, err := parseStoredTime(endStr.String)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &end
			}
		} else {
			var end sql.NullTime
			if err := rows.Scan(&record.RunID, &record.StartTime, &end, &record.DurationMs, &record.Subject, &totalDays, &maxLevel, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if end.Valid {
				record.EndTime = &end.Time
			}
		}
		record.TotalDays = totalDays.Int32
		record.MaxLevel = maxLevel.Int32
		results = append(results, record)
	}
	return results, rows.Err()
}

// GetAllRunDays retrieves every recorded day from the store.
func (rs *RunStoreImpl) GetAllRunDays() ([]schema.RunDayRecord, error) {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, day, offset_count, level FROM %s ORDER BY run_id, day`,
		quoteTableName(runDaysTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run days: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunDayRecord
	for rows.Next() {
		var record schema.RunDayRecord
		var day string
		if err := rows.Scan(&record.RunID, &day, &record.OffsetCount, &record.Level); err != nil {
			return nil, fmt.Errorf("failed to scan run day: %w", err)
		}
		record.Day, err = time.Parse(contract.DateFormat, day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day %q: %w", day, err)
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

// scanTime reads a single time column; SQLite stores it as RFC3339 text.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend == schema.SQLiteBackend {
		var raw string
		if err := row.Scan(&raw); err != nil {
			return time.Time{}, err
		}
		return parseStoredTime(raw)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

package iocache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// CacheStoreImpl handles durable storage of reduction results.
type CacheStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore initializes and returns a new CacheStore based on the backend type.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		return &CacheStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &CacheStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// resultColumnTypes are the key, payload and integer column types per backend.
var resultColumnTypes = map[schema.DatabaseBackend][3]string{
	schema.MySQLBackend:      {"VARCHAR(255)", "LONGBLOB", "BIGINT"},
	schema.PostgreSQLBackend: {"TEXT", "BYTEA", "BIGINT"},
	schema.SQLiteBackend:     {"TEXT", "BLOB", "INTEGER"},
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
// Results are keyed by their input fingerprint; stored_at is unix seconds.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	types, ok := resultColumnTypes[backend]
	if !ok {
		types = resultColumnTypes[schema.SQLiteBackend]
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	result_key %s PRIMARY KEY,
	payload %s NOT NULL,
	format_version INTEGER NOT NULL,
	stored_at %s NOT NULL
)`, quoteTableName(tableName, backend), types[0], types[1], types[2])
}

// Get retrieves a value by key from the store.
func (ps *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ps.backend == schema.NoneBackend || ps.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var ts int64

	query := fmt.Sprintf(`SELECT payload, format_version, stored_at FROM %s WHERE result_key = %s`,
		quoteTableName(ps.tableName, ps.backend), placeholders(ps.backend, 1))
	if err := ps.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces a key/value pair in the store.
func (ps *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ps.backend == schema.NoneBackend || ps.db == nil {
		return nil
	}
	_, err := ps.db.Exec(ps.getUpsertQuery(), key, value, version, timestamp)
	return err
}

// getUpsertQuery returns the statement that stores or overwrites one result.
func (ps *CacheStoreImpl) getUpsertQuery() string {
	table := quoteTableName(ps.tableName, ps.backend)
	insert := fmt.Sprintf("INSERT INTO %s (result_key, payload, format_version, stored_at) VALUES (%s)",
		table, placeholders(ps.backend, 4))
	switch ps.backend {
	case schema.MySQLBackend:
		return insert + ` AS new ON DUPLICATE KEY UPDATE
	payload = new.payload, format_version = new.format_version, stored_at = new.stored_at`
	case schema.PostgreSQLBackend:
		return insert + ` ON CONFLICT (result_key) DO UPDATE SET
	payload = EXCLUDED.payload, format_version = EXCLUDED.format_version, stored_at = EXCLUDED.stored_at`
	default:
		return strings.Replace(insert, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
	}
}

// Close closes the underlying DB connection.
func (ps *CacheStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (ps *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}

	if ps.backend == schema.NoneBackend || ps.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := ps.db.QueryRow(countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	rangeQuery := fmt.Sprintf("SELECT MAX(stored_at), MIN(stored_at) FROM %s", quotedTableName)
	if err := ps.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry time range: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	if err := ps.summarize(&status, time.Now()); err != nil {
		return status, err
	}

	// Fallback rough estimate when the size query is unavailable
	status.TableSizeBytes = int64(status.TotalEntries) * 1000

	switch ps.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := ps.db.QueryRow(sizeQuery).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		var size int64
		if err := ps.db.QueryRow(sizeQuery, cfg.DBName, ps.tableName).Scan(&size); err == nil {
			status.TableSizeBytes = size
		}
	case schema.PostgreSQLBackend:
		var size int64
		if err := ps.db.QueryRow("SELECT pg_total_relation_size($1)", ps.tableName).Scan(&size); err == nil {
			status.TableSizeBytes = size
		}
	}

	return status, nil
}

// cachedTimeline is the part of a stored result that status reporting reads.
type cachedTimeline struct {
	Subject  string     `json:"subject"`
	Timeline []struct{} `json:"timeline"`
}

// summarize counts the distinct subjects and days held by usable entries and
// the entries that lookups would reject as stale.
func (ps *CacheStoreImpl) summarize(status *schema.CacheStatus, now time.Time) error {
	query := fmt.Sprintf("SELECT payload, format_version, stored_at FROM %s", quoteTableName(ps.tableName, ps.backend))
	rows, err := ps.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to read cached timelines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cutoff := now.Add(-schema.CacheMaxAge).Unix()
	subjects := make(map[string]struct{})
	for rows.Next() {
		var payload []byte
		var version int
		var storedAt int64
		if err := rows.Scan(&payload, &version, &storedAt); err != nil {
			return fmt.Errorf("failed to scan cached timeline: %w", err)
		}

		var entry cachedTimeline
		if version != schema.CacheFormatVersion || storedAt < cutoff || sonic.Unmarshal(payload, &entry) != nil {
			status.StaleEntries++
			continue
		}
		subjects[entry.Subject] = struct{}{}
		status.CachedDays += len(entry.Timeline)
	}
	status.Subjects = len(subjects)
	return rows.Err()
}

// Prune deletes entries stored before cutoff or under another format version.
func (ps *CacheStoreImpl) Prune(cutoff int64, version int) (int64, error) {
	if ps.backend == schema.NoneBackend || ps.db == nil {
		return 0, nil
	}
	binds := strings.Split(placeholders(ps.backend, 2), ", ")
	query := fmt.Sprintf("DELETE FROM %s WHERE stored_at < %s OR format_version <> %s",
		quoteTableName(ps.tableName, ps.backend), binds[0], binds[1])
	res, err := ps.db.Exec(query, cutoff, version)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}

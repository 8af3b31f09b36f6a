package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig describes the MySQL connection used by MySQLStore.
type MySQLConfig struct {
	DSN             string        `json:"dsn"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
}

// MySQLStore persists entries in the submissions table.
type MySQLStore struct {
	db *sql.DB
}

// errDuplicateEntry is the MySQL error number for a primary key clash.
const errDuplicateEntry = 1062

// NewMySQLStore connects to MySQL and applies pending migrations.
func NewMySQLStore(ctx context.Context, cfg MySQLConfig) (*MySQLStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("MySQL DSN 不能为空")
	}
	dsn, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("解析 MySQL DSN 失败: %w", err)
	}
	dsn.MultiStatements = false
	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("创建 MySQL 连接器失败: %w", err)
	}
	db := sql.OpenDB(connector)

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(5)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法连接到 MySQL: %w", err)
	}
	store := &MySQLStore{db: db}
	if err := store.runMigrations(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

const insertSubmissionSQL = `INSERT INTO submissions
    (id, digest, operation, sender, status, gas_used, error_code, error_message, request_id, created_objects, submitted_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const recentSubmissionsSQL = `SELECT id, digest, operation, sender, status, gas_used, error_code, error_message, request_id, created_objects, submitted_at
    FROM submissions ORDER BY submitted_at DESC, id DESC LIMIT ?`

// Record implements Sink. Writing the same entry id twice is a no-op.
func (s *MySQLStore) Record(ctx context.Context, entry Entry) error {
	entry = Prepare(entry)
	objects, err := json.Marshal(entry.CreatedObjects)
	if err != nil {
		return fmt.Errorf("序列化新建对象失败: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertSubmissionSQL,
		entry.ID, entry.Digest, entry.Operation, entry.Sender, string(entry.Status), entry.GasUsed,
		entry.ErrorCode, entry.Error, entry.RequestID, string(objects), entry.SubmittedAt.UnixMilli())
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if stdErrors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry {
			return nil
		}
		return fmt.Errorf("写入提交记录失败: %w", err)
	}
	return nil
}

// Recent implements Store.
func (s *MySQLStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, recentSubmissionsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("查询提交记录失败: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			status    string
			errorMsg  sql.NullString
			objects   sql.NullString
			submitted int64
		)
		if err := rows.Scan(&entry.ID, &entry.Digest, &entry.Operation, &entry.Sender, &status, &entry.GasUsed,
			&entry.ErrorCode, &errorMsg, &entry.RequestID, &objects, &submitted); err != nil {
			return nil, fmt.Errorf("解析提交记录失败: %w", err)
		}
		entry.Status = Status(status)
		entry.Error = errorMsg.String
		if objects.Valid && objects.String != "" && objects.String != "null" {
			if err := json.Unmarshal([]byte(objects.String), &entry.CreatedObjects); err != nil {
				return nil, fmt.Errorf("解析新建对象失败: %w", err)
			}
		}
		entry.SubmittedAt = time.UnixMilli(submitted).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历提交记录失败: %w", err)
	}
	return entries, nil
}

// Close implements Sink.
func (s *MySQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Store = (*MySQLStore)(nil)

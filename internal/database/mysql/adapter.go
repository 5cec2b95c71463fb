package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/database/common"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
)

type Adapter struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (m *Adapter) Connect(ctx context.Context, dsn string, maxConns int) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	m.db = db
	return nil
}

func (m *Adapter) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Adapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func (m *Adapter) Acquire(ctx context.Context) (types.Session, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &session{conn: conn, qb: m.qb}, nil
}

func (m *Adapter) Stats(ctx context.Context, prefix string) (types.Stats, error) {
	var stats types.Stats
	var bytes int64

	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(table_rows), 0), COALESCE(SUM(data_length + index_length), 0)
		FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name LIKE ?
	`, prefix+"%").Scan(&stats.Tables, &stats.LiveRows, &bytes)
	if err != nil {
		return stats, fmt.Errorf("failed to read table statistics: %w", err)
	}

	stats.Size = common.FormatBytes(bytes)
	return stats, nil
}

func (m *Adapter) DropTables(ctx context.Context, prefix string) (int, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name LIKE ?
	`, prefix+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return 0, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	dropped := 0
	for _, name := range names {
		if !common.IsValidIdentifier(name) {
			continue
		}
		if _, err := m.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
			return dropped, fmt.Errorf("failed to drop table %s: %w", name, err)
		}
		dropped++
	}
	return dropped, nil
}

type session struct {
	conn *sql.Conn
	qb   squirrel.StatementBuilderType
}

func (s *session) TableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.conn.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return count > 0, nil
}

// CreateTable emulates the single-unit contract: MySQL DDL commits
// implicitly, so a failed index creation drops the half-made table.
func (s *session) CreateTable(ctx context.Context, table schema.Table) error {
	if err := common.ValidateTable(table); err != nil {
		return err
	}

	createSQL := fmt.Sprintf(`
		CREATE TABLE %s (
			id INT AUTO_INCREMENT PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			%s
		)
	`, table.Name, common.ColumnDefs(table.Columns))

	if _, err := s.conn.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}

	indexSQL := fmt.Sprintf("CREATE INDEX idx_%s_created ON %s (created_at)",
		table.Name, table.Name)
	if _, err := s.conn.ExecContext(ctx, indexSQL); err != nil {
		s.conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table.Name))
		return fmt.Errorf("failed to create index on %s: %w", table.Name, err)
	}
	return nil
}

func (s *session) InsertRows(ctx context.Context, table schema.Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	builder := s.qb.Insert(table.Name).Columns(table.ColumnNames()...)
	for _, row := range rows {
		builder = builder.Values(row...)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert statement: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit insert: %w", err)
	}
	return int64(len(rows)), nil
}

func (s *session) UpdateRows(ctx context.Context, table schema.Table, limit int) (int64, error) {
	if err := common.ValidateTable(table); err != nil {
		return 0, err
	}

	assignments := "updated_at = CURRENT_TIMESTAMP"
	if col, ok := table.FirstIntegerColumn(); ok {
		assignments += fmt.Sprintf(", %s = %s + 1", col.Name, col.Name)
	}

	// MySQL rejects LIMIT inside an IN subquery against the updated
	// table; the derived table sidesteps both restrictions.
	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id IN (SELECT id FROM (SELECT id FROM %s ORDER BY RAND() LIMIT ?) AS picked)
	`, table.Name, assignments, table.Name)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, query, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to update table %s: %w", table.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func (s *session) CountRows(ctx context.Context, name string) (int64, error) {
	query, _, err := s.qb.Select("COUNT(*)").From(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count statement: %w", err)
	}

	var count int64
	if err := s.conn.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", name, err)
	}
	return count, nil
}

func (s *session) Release() {
	s.conn.Close()
}

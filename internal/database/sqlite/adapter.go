package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Lumos-Labs-HQ/stressdb/internal/database/common"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
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

func (s *Adapter) Connect(ctx context.Context, dsn string, maxConns int) error {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// WAL mode lets readers proceed, but writers still serialize; the
	// busy timeout in the DSN absorbs lock contention between workers.
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	s.db = db
	return nil
}

func (s *Adapter) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Adapter) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Adapter) Acquire(ctx context.Context) (types.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &session{conn: conn, qb: s.qb}, nil
}

func (s *Adapter) Stats(ctx context.Context, prefix string) (types.Stats, error) {
	var stats types.Stats

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ?
	`, prefix+"%")
	if err != nil {
		return stats, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return stats, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	stats.Tables = int64(len(names))
	for _, name := range names {
		if !common.IsValidIdentifier(name) {
			continue
		}
		var count int64
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", name)).Scan(&count); err != nil {
			return stats, fmt.Errorf("failed to count rows in %s: %w", name, err)
		}
		stats.LiveRows += count
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return stats, fmt.Errorf("failed to read page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return stats, fmt.Errorf("failed to read page size: %w", err)
	}
	stats.Size = common.FormatBytes(pageCount * pageSize)

	return stats, nil
}

func (s *Adapter) DropTables(ctx context.Context, prefix string) (int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master WHERE type = 'table' AND name LIKE ?
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
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
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
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return count > 0, nil
}

func (s *session) CreateTable(ctx context.Context, table schema.Table) error {
	if err := common.ValidateTable(table); err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	createSQL := fmt.Sprintf(`
		CREATE TABLE %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			%s
		)
	`, table.Name, common.ColumnDefs(table.Columns))

	if _, err := tx.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}

	indexSQL := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_created ON %s (created_at)",
		table.Name, table.Name)
	if _, err := tx.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", table.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit table creation: %w", err)
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

	query := fmt.Sprintf(`
		UPDATE %s SET %s
		WHERE id IN (SELECT id FROM %s ORDER BY RANDOM() LIMIT ?)
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

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/database/common"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, dsn string, maxConns int) error {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	config.MaxConns = int32(maxConns)
	config.MinConns = 1
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) Acquire(ctx context.Context) (types.Session, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return &session{conn: conn, qb: p.qb}, nil
}

func (p *Adapter) Stats(ctx context.Context, prefix string) (types.Stats, error) {
	var stats types.Stats
	pattern := prefix + "%"

	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE $1
	`, pattern).Scan(&stats.Tables)
	if err != nil {
		return stats, fmt.Errorf("failed to count tables: %w", err)
	}

	err = p.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(n_live_tup), 0) FROM pg_stat_user_tables
		WHERE schemaname = 'public' AND relname LIKE $1
	`, pattern).Scan(&stats.LiveRows)
	if err != nil {
		return stats, fmt.Errorf("failed to sum live rows: %w", err)
	}

	err = p.pool.QueryRow(ctx,
		"SELECT pg_size_pretty(pg_database_size(current_database()))",
	).Scan(&stats.Size)
	if err != nil {
		return stats, fmt.Errorf("failed to read database size: %w", err)
	}

	return stats, nil
}

func (p *Adapter) DropTables(ctx context.Context, prefix string) (int, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE $1
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
		if _, err := p.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", name)); err != nil {
			return dropped, fmt.Errorf("failed to drop table %s: %w", name, err)
		}
		dropped++
	}
	return dropped, nil
}

type session struct {
	conn *pgxpool.Conn
	qb   squirrel.StatementBuilderType
}

func (s *session) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return exists, nil
}

func (s *session) CreateTable(ctx context.Context, table schema.Table) error {
	if err := common.ValidateTable(table); err != nil {
		return err
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	createSQL := fmt.Sprintf(`
		CREATE TABLE %s (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			%s
		)
	`, table.Name, common.ColumnDefs(table.Columns))

	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}

	indexSQL := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_created ON %s (created_at)",
		table.Name, table.Name)
	if _, err := tx.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", table.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
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

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table.Name, err)
	}
	if err := tx.Commit(ctx); err != nil {
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
		WHERE id IN (SELECT id FROM %s ORDER BY RANDOM() LIMIT $1)
	`, table.Name, assignments, table.Name)

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, query, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to update table %s: %w", table.Name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit update: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *session) CountRows(ctx context.Context, name string) (int64, error) {
	query, _, err := s.qb.Select("COUNT(*)").From(name).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count statement: %w", err)
	}

	var count int64
	if err := s.conn.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", name, err)
	}
	return count, nil
}

func (s *session) Release() {
	s.conn.Release()
}

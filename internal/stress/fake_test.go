package stress

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
	"github.com/Lumos-Labs-HQ/stressdb/internal/types"
)

// fakeAdapter is an in-memory database used by the engine tests. It
// records every operation so tests can assert the invariants: arity of
// inserted rows, batch sizes, pool discipline, attempt budgets.
type fakeAdapter struct {
	mu sync.Mutex

	connectErr error
	pingErr    error
	maxConns   int

	// collideFirst makes the first N existence checks report a live
	// table, simulating name collisions.
	collideFirst int
	existChecks  int

	// failCreateAll fails every CreateTable call.
	failCreateAll bool

	// failBatches marks batch ordinals (1-based, per table) whose
	// insert should fail.
	failBatches map[int]bool

	tables      map[string][]schema.Column
	rowCounts   map[string]int64
	batchSizes  map[string][]int
	updateCalls map[string]int

	inUse    int
	maxInUse int
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		tables:      make(map[string][]schema.Column),
		rowCounts:   make(map[string]int64),
		batchSizes:  make(map[string][]int),
		updateCalls: make(map[string]int),
	}
}

func (f *fakeAdapter) Connect(ctx context.Context, dsn string, maxConns int) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.maxConns = maxConns
	return nil
}

func (f *fakeAdapter) Close() error { return nil }

func (f *fakeAdapter) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeAdapter) Acquire(ctx context.Context) (types.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inUse++
	if f.inUse > f.maxInUse {
		f.maxInUse = f.inUse
	}
	return &fakeSession{db: f}, nil
}

func (f *fakeAdapter) Stats(ctx context.Context, prefix string) (types.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := types.Stats{Tables: int64(len(f.tables)), Size: "8192 bytes"}
	for _, n := range f.rowCounts {
		stats.LiveRows += n
	}
	return stats, nil
}

func (f *fakeAdapter) DropTables(ctx context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	dropped := len(f.tables)
	f.tables = make(map[string][]schema.Column)
	f.rowCounts = make(map[string]int64)
	return dropped, nil
}

type fakeSession struct {
	db       *fakeAdapter
	released bool
}

func (s *fakeSession) TableExists(ctx context.Context, name string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.existChecks++
	if s.db.existChecks <= s.db.collideFirst {
		return true, nil
	}
	_, ok := s.db.tables[name]
	return ok, nil
}

func (s *fakeSession) CreateTable(ctx context.Context, table schema.Table) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.failCreateAll {
		return errors.New("create failed")
	}
	if _, ok := s.db.tables[table.Name]; ok {
		return fmt.Errorf("table %s already exists", table.Name)
	}
	s.db.tables[table.Name] = table.Columns
	return nil
}

func (s *fakeSession) InsertRows(ctx context.Context, table schema.Table, rows [][]any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	columns, ok := s.db.tables[table.Name]
	if !ok {
		return 0, fmt.Errorf("table %s does not exist", table.Name)
	}
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row arity %d does not match column count %d", len(row), len(columns))
		}
	}

	batchNum := len(s.db.batchSizes[table.Name]) + 1
	s.db.batchSizes[table.Name] = append(s.db.batchSizes[table.Name], len(rows))
	if s.db.failBatches[batchNum] {
		return 0, errors.New("batch insert failed")
	}

	s.db.rowCounts[table.Name] += int64(len(rows))
	return int64(len(rows)), nil
}

func (s *fakeSession) UpdateRows(ctx context.Context, table schema.Table, limit int) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tables[table.Name]; !ok {
		return 0, fmt.Errorf("table %s does not exist", table.Name)
	}
	s.db.updateCalls[table.Name]++
	affected := int64(limit)
	if n := s.db.rowCounts[table.Name]; affected > n {
		affected = n
	}
	return affected, nil
}

func (s *fakeSession) CountRows(ctx context.Context, name string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tables[name]; !ok {
		return 0, fmt.Errorf("table %s does not exist", name)
	}
	return s.db.rowCounts[name], nil
}

func (s *fakeSession) Release() {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.released {
		s.released = true
		s.db.inUse--
	}
}

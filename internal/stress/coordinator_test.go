package stress

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/progress"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
)

func provisionFakeTables(db *fakeAdapter, n int) []schema.Table {
	tables := make([]schema.Table, 0, n)
	for i := 0; i < n; i++ {
		tables = append(tables, testTable(db, fmt.Sprintf("stress_table_%012d", i)))
	}
	return tables
}

func TestCoordinatorInsertsExactTotal(t *testing.T) {
	db := newFakeAdapter()
	tables := provisionFakeTables(db, 7)

	const rowsPerTable, batchSize, workers = 50, 8, 3

	bar := progress.NewWithWriter(&bytes.Buffer{}, int64(len(tables)*rowsPerTable))
	coord := NewCoordinator(db, NewInserter(time.Second), workers)

	total := coord.Run(context.Background(), tables, rowsPerTable, batchSize, bar)
	want := int64(len(tables) * rowsPerTable)
	if total != want {
		t.Fatalf("total inserted = %d, want %d", total, want)
	}
	if bar.Current() != want {
		t.Errorf("progress counter = %d, want %d", bar.Current(), want)
	}

	for _, table := range tables {
		if got := db.rowCounts[table.Name]; got != rowsPerTable {
			t.Errorf("table %s has %d rows, want %d", table.Name, got, rowsPerTable)
		}
	}
}

func TestCoordinatorRespectsWorkerBound(t *testing.T) {
	db := newFakeAdapter()
	tables := provisionFakeTables(db, 10)

	const workers = 2
	coord := NewCoordinator(db, NewInserter(time.Second), workers)
	coord.Run(context.Background(), tables, 20, 5, nil)

	if db.maxInUse > workers {
		t.Errorf("observed %d concurrently acquired sessions, want at most %d", db.maxInUse, workers)
	}
	if db.inUse != 0 {
		t.Errorf("%d sessions still held after run; every exit path must release", db.inUse)
	}
}

func TestCoordinatorMoreWorkersThanTables(t *testing.T) {
	db := newFakeAdapter()
	tables := provisionFakeTables(db, 2)

	coord := NewCoordinator(db, NewInserter(time.Second), 8)
	total := coord.Run(context.Background(), tables, 30, 30, nil)
	if total != 60 {
		t.Fatalf("total inserted = %d, want 60", total)
	}
}

func TestCoordinatorNoTables(t *testing.T) {
	db := newFakeAdapter()
	coord := NewCoordinator(db, NewInserter(time.Second), 4)

	if total := coord.Run(context.Background(), nil, 100, 10, nil); total != 0 {
		t.Fatalf("total inserted = %d for empty table set, want 0", total)
	}
}

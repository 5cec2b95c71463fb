package stress

import (
	"context"
	"testing"
	"time"
)

func TestUpdateCount(t *testing.T) {
	cases := []struct{ rows, want int }{
		{1000, 100},
		{100, 10},
		{10, 1},
		{5, 1},
		{1, 1},
	}
	for _, tc := range cases {
		if got := UpdateCount(tc.rows); got != tc.want {
			t.Errorf("UpdateCount(%d) = %d, want %d", tc.rows, got, tc.want)
		}
	}
}

func TestUpdateTablesTouchesEveryTable(t *testing.T) {
	db := newFakeAdapter()
	tables := provisionFakeTables(db, 4)
	for _, table := range tables {
		db.rowCounts[table.Name] = 100
	}
	sess, _ := db.Acquire(context.Background())

	updater := NewUpdater(time.Second)
	tablesUpdated, rowsUpdated := updater.UpdateTables(context.Background(), sess, tables, 100, nil)

	if tablesUpdated != 4 {
		t.Errorf("updated %d tables, want 4", tablesUpdated)
	}
	if rowsUpdated != 40 {
		t.Errorf("updated %d rows, want 10 per table = 40", rowsUpdated)
	}
	for _, table := range tables {
		if db.updateCalls[table.Name] != 1 {
			t.Errorf("table %s received %d update calls, want 1", table.Name, db.updateCalls[table.Name])
		}
	}
}

func TestUpdateTablesSkipsFailures(t *testing.T) {
	db := newFakeAdapter()
	tables := provisionFakeTables(db, 3)
	// A table missing from the catalog makes its update fail.
	delete(db.tables, tables[1].Name)
	sess, _ := db.Acquire(context.Background())

	updater := NewUpdater(time.Second)
	tablesUpdated, _ := updater.UpdateTables(context.Background(), sess, tables, 50, nil)

	if tablesUpdated != 2 {
		t.Errorf("updated %d tables, want 2 (failure is non-fatal)", tablesUpdated)
	}
}

func TestRunQueriesSamplesCreatedTables(t *testing.T) {
	db := newFakeAdapter()
	tables := provisionFakeTables(db, 3)
	sess, _ := db.Acquire(context.Background())

	querier := NewQuerier(time.Second)
	if got := querier.RunQueries(context.Background(), sess, tables); got != 5 {
		t.Errorf("ran %d successful queries, want 5", got)
	}
}

func TestRunQueriesEmptyTableSet(t *testing.T) {
	db := newFakeAdapter()
	sess, _ := db.Acquire(context.Background())

	querier := NewQuerier(time.Second)
	if got := querier.RunQueries(context.Background(), sess, nil); got != 0 {
		t.Errorf("ran %d queries against empty set, want 0", got)
	}
}

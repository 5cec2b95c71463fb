package stress

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/datagen"
	"github.com/Lumos-Labs-HQ/stressdb/internal/progress"
	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
)

func TestBatchSizesPartitionLaw(t *testing.T) {
	cases := []struct {
		total, batchSize int
		want             []int
	}{
		{100, 40, []int{40, 40, 20}},
		{100, 100, []int{100}},
		{100, 1000, []int{100}},
		{1000, 250, []int{250, 250, 250, 250}},
		{1, 10, []int{1}},
		{0, 10, nil},
	}

	for _, tc := range cases {
		got := BatchSizes(tc.total, tc.batchSize)
		if len(got) != len(tc.want) {
			t.Errorf("BatchSizes(%d, %d) = %v, want %v", tc.total, tc.batchSize, got, tc.want)
			continue
		}
		sum := 0
		for i, size := range got {
			if size != tc.want[i] {
				t.Errorf("BatchSizes(%d, %d) = %v, want %v", tc.total, tc.batchSize, got, tc.want)
			}
			if size > tc.batchSize {
				t.Errorf("batch %d of size %d exceeds batch size %d", i, size, tc.batchSize)
			}
			if size < tc.batchSize && i != len(got)-1 {
				t.Errorf("non-final batch %d has short size %d", i, size)
			}
			sum += size
		}
		if sum != tc.total && tc.total > 0 {
			t.Errorf("batch sizes %v sum to %d, want %d", got, sum, tc.total)
		}
	}
}

func testTable(db *fakeAdapter, name string) schema.Table {
	table := schema.Table{
		Name: name,
		Columns: []schema.Column{
			{Name: "col_1_int", Type: schema.TypeInteger},
			{Name: "col_2_text", Type: schema.TypeText},
		},
	}
	db.tables[table.Name] = table.Columns
	return table
}

func TestInsertTableInsertsAllBatches(t *testing.T) {
	db := newFakeAdapter()
	table := testTable(db, "stress_table_aaaaaaaaaaaa")
	sess, _ := db.Acquire(context.Background())

	ins := NewInserter(time.Second)
	gen := datagen.NewSeeded(1)
	bar := progress.NewWithWriter(&bytes.Buffer{}, 100)

	inserted := ins.InsertTable(context.Background(), sess, gen, table, 100, 40, bar)
	if inserted != 100 {
		t.Fatalf("inserted %d rows, want 100", inserted)
	}
	if bar.Current() != 100 {
		t.Errorf("progress counter = %d, want 100", bar.Current())
	}

	sizes := db.batchSizes[table.Name]
	want := []int{40, 40, 20}
	if len(sizes) != len(want) {
		t.Fatalf("batch sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("batch sizes = %v, want %v", sizes, want)
		}
	}
}

func TestInsertTableContinuesAfterFailedBatch(t *testing.T) {
	db := newFakeAdapter()
	db.failBatches = map[int]bool{2: true}
	table := testTable(db, "stress_table_bbbbbbbbbbbb")
	sess, _ := db.Acquire(context.Background())

	ins := NewInserter(time.Second)
	gen := datagen.NewSeeded(2)

	inserted := ins.InsertTable(context.Background(), sess, gen, table, 100, 40, nil)
	if inserted != 60 {
		t.Fatalf("inserted %d rows, want 60 (failed batch contributes 0)", inserted)
	}
	if got := len(db.batchSizes[table.Name]); got != 3 {
		t.Errorf("attempted %d batches, want 3 (run continues past failure)", got)
	}
}

func TestInsertTableStopsOnCancellation(t *testing.T) {
	db := newFakeAdapter()
	table := testTable(db, "stress_table_cccccccccccc")
	sess, _ := db.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ins := NewInserter(time.Second)
	gen := datagen.NewSeeded(3)

	inserted := ins.InsertTable(ctx, sess, gen, table, 100, 40, nil)
	if inserted != 0 {
		t.Fatalf("inserted %d rows on canceled context, want 0", inserted)
	}
}

package datagen

import (
	"testing"

	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
)

func allTypesColumns() []schema.Column {
	return []schema.Column{
		{Name: "col_1_text", Type: schema.TypeText},
		{Name: "col_2_int", Type: schema.TypeInteger},
		{Name: "col_3_bigint", Type: schema.TypeBigint},
		{Name: "col_4_varchar", Type: schema.TypeVarchar},
		{Name: "col_5_numeric", Type: schema.TypeNumeric},
	}
}

func TestRowArityMatchesColumns(t *testing.T) {
	g := NewSeeded(1)
	cols := allTypesColumns()

	row := g.Row(cols)
	if len(row) != len(cols) {
		t.Fatalf("row has %d values, want %d", len(row), len(cols))
	}
}

func TestRowValueDomains(t *testing.T) {
	g := NewSeeded(99)
	cols := allTypesColumns()

	for i := 0; i < 200; i++ {
		row := g.Row(cols)

		text, ok := row[0].(string)
		if !ok || len(text) != 50 {
			t.Fatalf("TEXT value %#v: want 50-char string", row[0])
		}

		n, ok := row[1].(int)
		if !ok || n < 0 || n > 1000000 {
			t.Fatalf("INTEGER value %#v outside [0, 1000000]", row[1])
		}

		big, ok := row[2].(int64)
		if !ok || big < 0 {
			t.Fatalf("BIGINT value %#v: want non-negative int64", row[2])
		}

		vc, ok := row[3].(string)
		if !ok || len(vc) != 100 {
			t.Fatalf("VARCHAR value %#v: want 100-char string", row[3])
		}

		num, ok := row[4].(float64)
		if !ok || num < 0 || num > 10000 {
			t.Fatalf("NUMERIC value %#v outside [0, 10000]", row[4])
		}
		// Rounded to 2 decimal places.
		if scaled := num * 100; scaled != float64(int64(scaled)) {
			t.Fatalf("NUMERIC value %v not rounded to 2 decimals", num)
		}
	}
}

func TestBigintCanExceedInt32(t *testing.T) {
	g := NewSeeded(3)
	cols := []schema.Column{{Name: "col_1_bigint", Type: schema.TypeBigint}}

	exceeded := false
	for i := 0; i < 1000; i++ {
		row := g.Row(cols)
		if v := row[0].(int64); v > int64(1)<<32 {
			exceeded = true
			break
		}
	}
	if !exceeded {
		t.Error("expected at least one BIGINT value above 32-bit range in 1000 draws")
	}
}

func TestRowsGeneratesRequestedCount(t *testing.T) {
	g := NewSeeded(5)
	cols := allTypesColumns()

	rows := g.Rows(cols, 40)
	if len(rows) != 40 {
		t.Fatalf("expected 40 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("row %d has arity %d, want %d", i, len(row), len(cols))
		}
	}
}

func TestStringLengthAndCharset(t *testing.T) {
	g := NewSeeded(11)

	s := g.String(100)
	if len(s) != 100 {
		t.Fatalf("expected 100-char string, got %d", len(s))
	}
	for _, r := range s {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !isAlnum {
			t.Fatalf("string contains non-alphanumeric rune %q", r)
		}
	}
}

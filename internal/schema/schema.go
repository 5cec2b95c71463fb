package schema

import (
	"fmt"
	"math/rand"
	"time"
)

// TablePrefix is shared by every generated table so that cleanup and
// statistics can find them with a single LIKE pattern.
const TablePrefix = "stress_table_"

const suffixLength = 12

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ColumnType is the SQL type of a generated column.
type ColumnType string

const (
	TypeText    ColumnType = "TEXT"
	TypeInteger ColumnType = "INTEGER"
	TypeBigint  ColumnType = "BIGINT"
	TypeVarchar ColumnType = "VARCHAR(255)"
	TypeNumeric ColumnType = "NUMERIC(10,2)"
)

// columnTypes pairs each type with the suffix embedded in generated
// column names, e.g. col_3_numeric.
var columnTypes = []struct {
	Type   ColumnType
	Suffix string
}{
	{TypeText, "text"},
	{TypeInteger, "int"},
	{TypeBigint, "bigint"},
	{TypeVarchar, "varchar"},
	{TypeNumeric, "numeric"},
}

// Column describes one generated column. Immutable once generated.
type Column struct {
	Name string
	Type ColumnType
}

// Table describes one provisioned table: its random name plus the
// ordered column set every inserted row must match.
type Table struct {
	Name    string
	Columns []Column
}

// FirstIntegerColumn returns the first INTEGER or BIGINT column, the
// update target for the bulk-update phase.
func (t Table) FirstIntegerColumn() (Column, bool) {
	for _, col := range t.Columns {
		if col.Type == TypeInteger || col.Type == TypeBigint {
			return col, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Generator produces random table names and column definitions.
type Generator struct {
	rand *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededGenerator returns a generator with a fixed seed for
// reproducible runs.
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// TableName returns a fresh random table name. Collisions with live
// tables are possible; the provisioner checks the catalog and retries.
func (g *Generator) TableName() string {
	suffix := make([]byte, suffixLength)
	for i := range suffix {
		suffix[i] = alphanumeric[g.rand.Intn(len(alphanumeric))]
	}
	return TablePrefix + string(suffix)
}

// Columns returns n column definitions with independently random types.
func (g *Generator) Columns(n int) []Column {
	columns := make([]Column, 0, n)
	for i := 1; i <= n; i++ {
		ct := columnTypes[g.rand.Intn(len(columnTypes))]
		columns = append(columns, Column{
			Name: fmt.Sprintf("col_%d_%s", i, ct.Suffix),
			Type: ct.Type,
		})
	}
	return columns
}

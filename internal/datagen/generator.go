package datagen

import (
	"math"
	"math/rand"
	"time"

	"github.com/Lumos-Labs-HQ/stressdb/internal/schema"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	maxInteger    = 1000000
	maxBigintPart = int64(1) << 31
	maxNumeric    = 10000
	varcharLength = 100
	textLength    = 50
)

// Generator produces random row values matching column definitions.
// Not safe for concurrent use; each insert worker owns its own.
type Generator struct {
	rand *rand.Rand
}

func New() *Generator {
	return &Generator{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func NewSeeded(seed int64) *Generator {
	return &Generator{rand: rand.New(rand.NewSource(seed))}
}

// Row returns one tuple of random values, one per column, each drawn
// from its type's generation domain.
func (g *Generator) Row(columns []schema.Column) []any {
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = g.value(col.Type)
	}
	return values
}

// Rows returns n freshly generated rows for one insert batch.
func (g *Generator) Rows(columns []schema.Column, n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = g.Row(columns)
	}
	return rows
}

func (g *Generator) value(t schema.ColumnType) any {
	switch t {
	case schema.TypeInteger:
		return g.rand.Intn(maxInteger + 1)
	case schema.TypeBigint:
		// Product of two 31-bit draws so values exceed 32-bit range.
		return g.rand.Int63n(maxBigintPart+1) * g.rand.Int63n(maxBigintPart+1)
	case schema.TypeVarchar:
		return g.String(varcharLength)
	case schema.TypeNumeric:
		return math.Round(g.rand.Float64()*maxNumeric*100) / 100
	default:
		return g.String(textLength)
	}
}

// String returns a random alphanumeric string of the given length.
func (g *Generator) String(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[g.rand.Intn(len(alphanumeric))]
	}
	return string(b)
}

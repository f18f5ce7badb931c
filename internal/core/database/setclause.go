package database

import (
	"fmt"
	"strings"
)

// setBuilder assembles the SET clause of a partial UPDATE from whichever
// fields the caller supplied, keeping parameter indexes contiguous.
type setBuilder struct {
	clauses []string
	args    []any
}

// Set appends "column = $n" with the given value.
func (b *setBuilder) Set(column string, value any) {
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)+1))
	b.args = append(b.args, value)
}

// SetExpr appends "column = expr($n)" for values that go through a SQL
// function, like ST_GeomFromGeoJSON.
func (b *setBuilder) SetExpr(column, expr string, value any) {
	b.clauses = append(b.clauses, fmt.Sprintf("%s = %s($%d)", column, expr, len(b.args)+1))
	b.args = append(b.args, value)
}

func (b *setBuilder) Empty() bool { return len(b.clauses) == 0 }

// Clause returns the joined SET body, e.g. "a = $1, b = $2".
func (b *setBuilder) Clause() string { return strings.Join(b.clauses, ", ") }

// Next returns the placeholder index for the next argument appended outside
// the builder (typically the WHERE parameters).
func (b *setBuilder) Next() int { return len(b.args) + 1 }

// Args returns the accumulated parameters, optionally followed by extras.
func (b *setBuilder) Args(extra ...any) []any {
	return append(append([]any{}, b.args...), extra...)
}

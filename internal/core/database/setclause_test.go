package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBuilderKeepsIndexesContiguous(t *testing.T) {
	var b setBuilder
	assert.True(t, b.Empty())

	b.Set("nom_parcelle", "Oliveraie Nord")
	b.SetExpr("geometrie", "ST_GeomFromGeoJSON", `{"type":"Polygon"}`)
	b.Set("type_sol_predominant", "argileux")

	assert.False(t, b.Empty())
	assert.Equal(t, "nom_parcelle = $1, geometrie = ST_GeomFromGeoJSON($2), type_sol_predominant = $3", b.Clause())
	assert.Equal(t, 4, b.Next())
	assert.Equal(t, []any{"Oliveraie Nord", `{"type":"Polygon"}`, "argileux", int64(9), int64(7)}, b.Args(int64(9), int64(7)))
}

func TestSetBuilderArgsCopies(t *testing.T) {
	var b setBuilder
	b.Set("a", 1)

	first := b.Args(int64(5))
	second := b.Args(int64(6))
	assert.Equal(t, []any{1, int64(5)}, first)
	assert.Equal(t, []any{1, int64(6)}, second)
}

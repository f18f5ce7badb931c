package validate

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructCollectsAllViolations(t *testing.T) {
	type req struct {
		NomComplet string `json:"nom_complet" validate:"required,min=3"`
		Email      string `json:"email" validate:"required,email"`
		MotDePasse string `json:"mot_de_passe" validate:"required,min=6"`
	}

	fields := Struct(req{NomComplet: "ab", Email: "pas-un-email", MotDePasse: "123"})
	require.Len(t, fields, 3)

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"nom_complet", "email", "mot_de_passe"}, names)
}

func TestStructValidInput(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required,email"`
	}
	assert.Nil(t, Struct(req{Email: "amina@exemple.tn"}))
}

func TestCheckGeoJSONPolygon(t *testing.T) {
	valid := json.RawMessage(`{"type":"Polygon","coordinates":[[[10.1,36.8],[10.2,36.8],[10.2,36.9],[10.1,36.8]]]}`)
	assert.NoError(t, CheckGeoJSON(valid))
}

func TestCheckGeoJSONMultiPolygon(t *testing.T) {
	valid := json.RawMessage(`{"type":"MultiPolygon","coordinates":[[[[10.1,36.8],[10.2,36.8],[10.2,36.9],[10.1,36.8]]]]}`)
	assert.NoError(t, CheckGeoJSON(valid))
}

func TestCheckGeoJSONRejects(t *testing.T) {
	cases := map[string]string{
		"point type":    `{"type":"Point","coordinates":[10.1,36.8]}`,
		"open ring":     `{"type":"Polygon","coordinates":[[[10.1,36.8],[10.2,36.8],[10.2,36.9],[10.3,36.9]]]}`,
		"short ring":    `{"type":"Polygon","coordinates":[[[10.1,36.8],[10.2,36.8],[10.1,36.8]]]}`,
		"missing parts": `{"type":"Polygon"}`,
		"not geojson":   `"une chaine"`,
		"bad points":    `{"type":"Polygon","coordinates":[[[10.1],[10.2],[10.2],[10.1]]]}`,
		// One-element position inside an otherwise closed ring.
		"short position": `{"type":"Polygon","coordinates":[[[10.1,36.8],[10.2],[10.2,36.9],[10.1,36.8]]]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, CheckGeoJSON(json.RawMessage(raw)))
		})
	}
}

func TestPaginationDefaultsAndClamp(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=0&limit=0", nil)
	page, limit := Pagination(r, 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)

	r = httptest.NewRequest("GET", "/?page=3&limit=500", nil)
	page, limit = Pagination(r, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)

	r = httptest.NewRequest("GET", "/", nil)
	page, limit = Pagination(r, 20)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, limit)
}

func TestIDParam(t *testing.T) {
	id, err := IDParam("42", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-3", "abc", ""} {
		_, err := IDParam(raw, "id")
		assert.Error(t, err, raw)
	}
}

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		limit      int
		totalItems int64
		totalPages int
	}{
		{"exact fit", 1, 10, 20, 2},
		{"remainder adds a page", 1, 2, 5, 3},
		{"empty result", 1, 10, 0, 0},
		{"single row", 3, 10, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.limit, tc.totalItems)
			assert.Equal(t, tc.page, p.CurrentPage)
			assert.Equal(t, tc.limit, p.Limit)
			assert.Equal(t, tc.totalItems, p.TotalItems)
			assert.Equal(t, tc.totalPages, p.TotalPages)
		})
	}
}

func TestUtilisateurHashNeverSerialized(t *testing.T) {
	u := Utilisateur{
		ID:             1,
		NomComplet:     "Amina Ben Salah",
		Email:          "amina@exemple.tn",
		MotDePasseHash: "$2a$10$secret",
		Role:           RoleAgriculteur,
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "mot_de_passe_hash")

	raw, err = json.Marshal(u.ProfilPublic())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "amina@exemple.tn")
	assert.NotContains(t, string(raw), "secret")
}

package database

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
)

const cultureColumns = `id, nom_culture, description_generale, periode_semis_ideale_debut,
	periode_semis_ideale_fin, besoins_eau_mm_cycle, type_sol_recommande`

func scanCulture(row interface{ Scan(...any) error }) (*models.Culture, error) {
	var cu models.Culture
	err := row.Scan(&cu.ID, &cu.NomCulture, &cu.DescriptionGenerale, &cu.PeriodeSemisIdealeDebut,
		&cu.PeriodeSemisIdealeFin, &cu.BesoinsEauMmCycle, &cu.TypeSolRecommande)
	if err != nil {
		return nil, err
	}
	return &cu, nil
}

func (c *Client) ListCultures(ctx context.Context, limit, offset int) ([]models.Culture, int64, error) {
	dataQ := fmt.Sprintf(`
		SELECT %s FROM cultures_catalogue
		ORDER BY nom_culture
		LIMIT $1 OFFSET $2`, cultureColumns)
	const countQ = `SELECT COUNT(*) FROM cultures_catalogue`

	var (
		out   []models.Culture
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.db.QueryContext(gctx, dataQ, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			cu, err := scanCulture(rows)
			if err != nil {
				return err
			}
			out = append(out, *cu)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return c.db.QueryRowContext(gctx, countQ).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (c *Client) GetCultureByID(ctx context.Context, id int64) (*models.Culture, error) {
	q := fmt.Sprintf(`SELECT %s FROM cultures_catalogue WHERE id = $1`, cultureColumns)
	cu, err := scanCulture(c.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cu, nil
}

func (c *Client) CreateCulture(ctx context.Context, cu *models.Culture) (*models.Culture, error) {
	q := fmt.Sprintf(`
		INSERT INTO cultures_catalogue
			(nom_culture, description_generale, periode_semis_ideale_debut, periode_semis_ideale_fin, besoins_eau_mm_cycle, type_sol_recommande)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, cultureColumns)
	out, err := scanCulture(c.db.QueryRowContext(ctx, q,
		cu.NomCulture, cu.DescriptionGenerale, cu.PeriodeSemisIdealeDebut,
		cu.PeriodeSemisIdealeFin, cu.BesoinsEauMmCycle, cu.TypeSolRecommande))
	if pgErrorCode(err) == pgUniqueViolation {
		return nil, apperr.Conflict("Une culture avec ce nom existe déjà.")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateCulture(ctx context.Context, id int64, upd core.CultureUpdate) (*models.Culture, error) {
	var b setBuilder
	if upd.NomCulture != nil {
		b.Set("nom_culture", *upd.NomCulture)
	}
	if upd.DescriptionGenerale != nil {
		b.Set("description_generale", *upd.DescriptionGenerale)
	}
	if upd.PeriodeSemisIdealeDebut != nil {
		b.Set("periode_semis_ideale_debut", *upd.PeriodeSemisIdealeDebut)
	}
	if upd.PeriodeSemisIdealeFin != nil {
		b.Set("periode_semis_ideale_fin", *upd.PeriodeSemisIdealeFin)
	}
	if upd.BesoinsEauMmCycle != nil {
		b.Set("besoins_eau_mm_cycle", *upd.BesoinsEauMmCycle)
	}
	if upd.TypeSolRecommande != nil {
		b.Set("type_sol_recommande", *upd.TypeSolRecommande)
	}
	if b.Empty() {
		return nil, apperr.BadRequest("Aucune donnée à mettre à jour.")
	}

	q := fmt.Sprintf(`
		UPDATE cultures_catalogue SET %s
		WHERE id = $%d
		RETURNING %s`, b.Clause(), b.Next(), cultureColumns)
	cu, err := scanCulture(c.db.QueryRowContext(ctx, q, b.Args(id)...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cu, nil
}

func (c *Client) DeleteCulture(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM cultures_catalogue WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

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

const parcelleColumns = `id, nom_parcelle, description, ST_AsGeoJSON(geometrie) AS geometrie,
	superficie_calculee_ha, type_sol_predominant, culture_actuelle_id, date_creation`

func scanParcelle(row interface{ Scan(...any) error }) (*models.Parcelle, error) {
	var p models.Parcelle
	var geo []byte
	err := row.Scan(&p.ID, &p.NomParcelle, &p.Description, &geo,
		&p.SuperficieCalculeeHa, &p.TypeSolPredominant, &p.CultureActuelleID, &p.DateCreation)
	if err != nil {
		return nil, err
	}
	p.Geometrie = geo
	return &p, nil
}

func (c *Client) CreateParcelle(ctx context.Context, p *models.Parcelle) (*models.Parcelle, error) {
	q := fmt.Sprintf(`
		INSERT INTO parcelles
			(utilisateur_id, nom_parcelle, description, geometrie, superficie_calculee_ha, type_sol_predominant, culture_actuelle_id)
		VALUES ($1, $2, $3, ST_GeomFromGeoJSON($4), $5, $6, $7)
		RETURNING %s`, parcelleColumns)
	out, err := scanParcelle(c.db.QueryRowContext(ctx, q,
		p.UtilisateurID, p.NomParcelle, p.Description, string(p.Geometrie),
		p.SuperficieCalculeeHa, p.TypeSolPredominant, p.CultureActuelleID))
	if isInvalidGeoJSON(err) {
		return nil, apperr.BadRequest("Format GeoJSON invalide pour la géométrie.")
	}
	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, apperr.BadRequest("L'ID de la culture actuelle est invalide.")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListParcellesByUtilisateur(ctx context.Context, utilisateurID int64, limit, offset int) ([]models.Parcelle, int64, error) {
	dataQ := fmt.Sprintf(`
		SELECT %s FROM parcelles
		WHERE utilisateur_id = $1
		ORDER BY date_creation DESC
		LIMIT $2 OFFSET $3`, parcelleColumns)
	const countQ = `SELECT COUNT(*) FROM parcelles WHERE utilisateur_id = $1`

	var (
		out   []models.Parcelle
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.db.QueryContext(gctx, dataQ, utilisateurID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanParcelle(rows)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return c.db.QueryRowContext(gctx, countQ, utilisateurID).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (c *Client) GetParcelleForUtilisateur(ctx context.Context, id, utilisateurID int64) (*models.Parcelle, error) {
	q := fmt.Sprintf(`SELECT %s FROM parcelles WHERE id = $1 AND utilisateur_id = $2`, parcelleColumns)
	p, err := scanParcelle(c.db.QueryRowContext(ctx, q, id, utilisateurID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) UpdateParcelle(ctx context.Context, id, utilisateurID int64, upd core.ParcelleUpdate) (*models.Parcelle, error) {
	var b setBuilder
	if upd.NomParcelle != nil {
		b.Set("nom_parcelle", *upd.NomParcelle)
	}
	if upd.Description != nil {
		b.Set("description", *upd.Description)
	}
	if upd.Geometrie != nil {
		b.SetExpr("geometrie", "ST_GeomFromGeoJSON", string(upd.Geometrie))
	}
	if upd.SuperficieCalculeeHa != nil {
		b.Set("superficie_calculee_ha", *upd.SuperficieCalculeeHa)
	}
	if upd.TypeSolPredominant != nil {
		b.Set("type_sol_predominant", *upd.TypeSolPredominant)
	}
	if upd.CultureActuelleID != nil {
		b.Set("culture_actuelle_id", *upd.CultureActuelleID)
	}
	if b.Empty() {
		return nil, apperr.BadRequest("Aucune donnée à mettre à jour.")
	}

	q := fmt.Sprintf(`
		UPDATE parcelles SET %s
		WHERE id = $%d AND utilisateur_id = $%d
		RETURNING %s`, b.Clause(), b.Next(), b.Next()+1, parcelleColumns)
	p, err := scanParcelle(c.db.QueryRowContext(ctx, q, b.Args(id, utilisateurID)...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isInvalidGeoJSON(err) {
		return nil, apperr.BadRequest("Format GeoJSON invalide pour la géométrie lors de la mise à jour.")
	}
	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, apperr.BadRequest("L'ID de la culture actuelle est invalide.")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) DeleteParcelle(ctx context.Context, id, utilisateurID int64) (bool, error) {
	const q = `DELETE FROM parcelles WHERE id = $1 AND utilisateur_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, utilisateurID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

package database

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
)

func (c *Client) SearchObservations(ctx context.Context, f core.ObservationFilter, limit, offset int) ([]models.ObservationPrix, int64, error) {
	var (
		where  []string
		args   []any
		argIdx = 1
	)
	add := func(clause string, value any) {
		where = append(where, fmt.Sprintf(clause, argIdx))
		args = append(args, value)
		argIdx++
	}
	if f.ProduitID > 0 {
		add("opm.produit_id = $%d", f.ProduitID)
	}
	if f.RegionID > 0 {
		add("opm.region_id = $%d", f.RegionID)
	}
	if f.DateStart != "" {
		add("opm.date_observation >= $%d", f.DateStart)
	}
	if f.DateEnd != "" {
		add("opm.date_observation <= $%d", f.DateEnd)
	}
	if f.MarcheNom != "" {
		add("opm.nom_marche_specifique ILIKE $%d", "%"+f.MarcheNom+"%")
	}

	const fromClause = `
		FROM observations_prix_marches opm
		JOIN produits_agricoles_prix pa ON opm.produit_id = pa.id
		JOIN regions_tunisie rt ON opm.region_id = rt.id`
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	dataQ := fmt.Sprintf(`
		SELECT opm.id, opm.produit_id, opm.region_id, opm.nom_marche_specifique,
		       opm.prix_moyen_kg_ou_unite, opm.unite_prix, opm.date_observation, opm.source_information,
		       pa.nom_produit, pa.categorie_produit, rt.nom_region, rt.gouvernorat
		%s%s
		ORDER BY opm.date_observation DESC, pa.nom_produit ASC
		LIMIT $%d OFFSET $%d`, fromClause, whereClause, argIdx, argIdx+1)
	countQ := fmt.Sprintf(`SELECT COUNT(opm.*) %s%s`, fromClause, whereClause)

	dataArgs := append(append([]any{}, args...), limit, offset)

	var (
		out   []models.ObservationPrix
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.db.QueryContext(gctx, dataQ, dataArgs...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var o models.ObservationPrix
			if err := rows.Scan(&o.ID, &o.ProduitID, &o.RegionID, &o.NomMarcheSpecifique,
				&o.PrixMoyenKgOuUnite, &o.UnitePrix, &o.DateObservation, &o.SourceInformation,
				&o.NomProduit, &o.CategorieProduit, &o.NomRegion, &o.Gouvernorat); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return c.db.QueryRowContext(gctx, countQ, args...).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (c *Client) CreateObservation(ctx context.Context, o *models.ObservationPrix) (*models.ObservationPrix, error) {
	const q = `
		INSERT INTO observations_prix_marches
			(produit_id, region_id, nom_marche_specifique, prix_moyen_kg_ou_unite, unite_prix, date_observation, source_information)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, produit_id, region_id, nom_marche_specifique, prix_moyen_kg_ou_unite, unite_prix, date_observation, source_information`
	var out models.ObservationPrix
	err := c.db.QueryRowContext(ctx, q,
		o.ProduitID, o.RegionID, o.NomMarcheSpecifique, o.PrixMoyenKgOuUnite,
		o.UnitePrix, o.DateObservation, o.SourceInformation,
	).Scan(&out.ID, &out.ProduitID, &out.RegionID, &out.NomMarcheSpecifique,
		&out.PrixMoyenKgOuUnite, &out.UnitePrix, &out.DateObservation, &out.SourceInformation)
	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, apperr.BadRequest(c.invalidReferenceMessage(ctx, o.ProduitID, o.RegionID))
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// invalidReferenceMessage names the foreign key that failed, checking the
// product first then the region, like the original contract.
func (c *Client) invalidReferenceMessage(ctx context.Context, produitID, regionID int64) string {
	var exists bool
	if err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM produits_agricoles_prix WHERE id = $1)`, produitID).Scan(&exists); err == nil && !exists {
		return "ID de produit invalide."
	}
	if err := c.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM regions_tunisie WHERE id = $1)`, regionID).Scan(&exists); err == nil && !exists {
		return "ID de région invalide."
	}
	return "ID de produit ou de région invalide."
}

func (c *Client) ListProduits(ctx context.Context) ([]models.ProduitAgricole, error) {
	const q = `SELECT id, nom_produit, categorie_produit FROM produits_agricoles_prix ORDER BY nom_produit`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProduitAgricole
	for rows.Next() {
		var p models.ProduitAgricole
		if err := rows.Scan(&p.ID, &p.NomProduit, &p.CategorieProduit); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (c *Client) ListRegions(ctx context.Context) ([]models.Region, error) {
	const q = `SELECT id, nom_region, gouvernorat FROM regions_tunisie ORDER BY nom_region`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Region
	for rows.Next() {
		var r models.Region
		if err := rows.Scan(&r.ID, &r.NomRegion, &r.Gouvernorat); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

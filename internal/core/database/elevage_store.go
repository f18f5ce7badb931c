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

func (c *Client) ListTypesAnimaux(ctx context.Context, limit, offset int) ([]models.TypeAnimal, int64, error) {
	const dataQ = `
		SELECT id, nom_espece, description_generale
		FROM animaux_types_catalogue
		ORDER BY nom_espece
		LIMIT $1 OFFSET $2`
	const countQ = `SELECT COUNT(*) FROM animaux_types_catalogue`

	var (
		out   []models.TypeAnimal
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
			var t models.TypeAnimal
			if err := rows.Scan(&t.ID, &t.NomEspece, &t.DescriptionGenerale); err != nil {
				return err
			}
			out = append(out, t)
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

const animalColumns = `aeu.id, aeu.animal_type_id, atc.nom_espece, aeu.identifiant_animal, aeu.date_naissance_approx, aeu.notes_sante`

func scanAnimal(row interface{ Scan(...any) error }) (*models.AnimalUtilisateur, error) {
	var a models.AnimalUtilisateur
	err := row.Scan(&a.ID, &a.AnimalTypeID, &a.NomEspece, &a.IdentifiantAnimal, &a.DateNaissanceApprox, &a.NotesSante)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) CreateAnimal(ctx context.Context, a *models.AnimalUtilisateur) (*models.AnimalUtilisateur, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO animaux_elevage_utilisateur
				(utilisateur_id, animal_type_id, identifiant_animal, date_naissance_approx, notes_sante)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT inserted.id, inserted.animal_type_id, atc.nom_espece, inserted.identifiant_animal, inserted.date_naissance_approx, inserted.notes_sante
		FROM inserted JOIN animaux_types_catalogue atc ON inserted.animal_type_id = atc.id`
	out, err := scanAnimal(c.db.QueryRowContext(ctx, q,
		a.UtilisateurID, a.AnimalTypeID, a.IdentifiantAnimal, a.DateNaissanceApprox, a.NotesSante))
	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, apperr.BadRequest("Type d'animal invalide.")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAnimauxByUtilisateur(ctx context.Context, utilisateurID int64, limit, offset int) ([]models.AnimalUtilisateur, int64, error) {
	dataQ := fmt.Sprintf(`
		SELECT %s
		FROM animaux_elevage_utilisateur aeu
		JOIN animaux_types_catalogue atc ON aeu.animal_type_id = atc.id
		WHERE aeu.utilisateur_id = $1
		ORDER BY aeu.id DESC
		LIMIT $2 OFFSET $3`, animalColumns)
	const countQ = `SELECT COUNT(*) FROM animaux_elevage_utilisateur WHERE utilisateur_id = $1`

	var (
		out   []models.AnimalUtilisateur
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
			a, err := scanAnimal(rows)
			if err != nil {
				return err
			}
			out = append(out, *a)
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

func (c *Client) GetAnimalForUtilisateur(ctx context.Context, id, utilisateurID int64) (*models.AnimalUtilisateur, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM animaux_elevage_utilisateur aeu
		JOIN animaux_types_catalogue atc ON aeu.animal_type_id = atc.id
		WHERE aeu.id = $1 AND aeu.utilisateur_id = $2`, animalColumns)
	a, err := scanAnimal(c.db.QueryRowContext(ctx, q, id, utilisateurID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *Client) UpdateAnimal(ctx context.Context, id, utilisateurID int64, upd core.AnimalUpdate) (*models.AnimalUtilisateur, error) {
	var b setBuilder
	if upd.AnimalTypeID != nil {
		b.Set("animal_type_id", *upd.AnimalTypeID)
	}
	if upd.IdentifiantAnimal != nil {
		b.Set("identifiant_animal", *upd.IdentifiantAnimal)
	}
	if upd.DateNaissanceApprox != nil {
		b.Set("date_naissance_approx", *upd.DateNaissanceApprox)
	}
	if upd.NotesSante != nil {
		b.Set("notes_sante", *upd.NotesSante)
	}
	if b.Empty() {
		return nil, apperr.BadRequest("Aucun champ à mettre à jour.")
	}

	q := fmt.Sprintf(`
		WITH updated AS (
			UPDATE animaux_elevage_utilisateur SET %s
			WHERE id = $%d AND utilisateur_id = $%d
			RETURNING *
		)
		SELECT updated.id, updated.animal_type_id, atc.nom_espece, updated.identifiant_animal, updated.date_naissance_approx, updated.notes_sante
		FROM updated JOIN animaux_types_catalogue atc ON updated.animal_type_id = atc.id`,
		b.Clause(), b.Next(), b.Next()+1)
	a, err := scanAnimal(c.db.QueryRowContext(ctx, q, b.Args(id, utilisateurID)...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if pgErrorCode(err) == pgForeignKeyViolation {
		return nil, apperr.BadRequest("Type d'animal invalide pour la mise à jour.")
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *Client) DeleteAnimal(ctx context.Context, id, utilisateurID int64) (bool, error) {
	const q = `DELETE FROM animaux_elevage_utilisateur WHERE id = $1 AND utilisateur_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, utilisateurID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

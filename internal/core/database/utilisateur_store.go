package database

import (
	"context"
	"database/sql"

	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/models"
)

func (c *Client) CreateUtilisateur(ctx context.Context, u *models.Utilisateur) (*models.Utilisateur, error) {
	const q = `
		INSERT INTO utilisateurs (nom_complet, email, mot_de_passe_hash, numero_telephone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, nom_complet, email, numero_telephone, role, date_creation
	`
	var out models.Utilisateur
	err := c.db.QueryRowContext(ctx, q,
		u.NomComplet, u.Email, u.MotDePasseHash, u.NumeroTelephone, u.Role,
	).Scan(&out.ID, &out.NomComplet, &out.Email, &out.NumeroTelephone, &out.Role, &out.DateCreation)
	if pgErrorCode(err) == pgUniqueViolation {
		return nil, apperr.Conflict("Un utilisateur avec cet email existe déjà.")
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUtilisateurByEmail(ctx context.Context, email string) (*models.Utilisateur, error) {
	const q = `
		SELECT id, nom_complet, email, mot_de_passe_hash, numero_telephone, role, derniere_connexion, date_creation
		FROM utilisateurs WHERE email = $1
	`
	var u models.Utilisateur
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.NomComplet, &u.Email, &u.MotDePasseHash, &u.NumeroTelephone, &u.Role, &u.DerniereConnexion, &u.DateCreation,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) TouchDerniereConnexion(ctx context.Context, id int64) error {
	const q = `UPDATE utilisateurs SET derniere_connexion = now() WHERE id = $1`
	_, err := c.db.ExecContext(ctx, q, id)
	return err
}

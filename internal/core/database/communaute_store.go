package database

import (
	"context"
	"database/sql"

	"golang.org/x/sync/errgroup"

	"github.com/agritunisie/connect/internal/models"
)

func (c *Client) ListCategories(ctx context.Context, limit, offset int) ([]models.ForumCategorie, int64, error) {
	const dataQ = `
		SELECT id, nom_categorie, description
		FROM forum_categories
		ORDER BY nom_categorie
		LIMIT $1 OFFSET $2`
	const countQ = `SELECT COUNT(*) FROM forum_categories`

	var (
		out   []models.ForumCategorie
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
			var cat models.ForumCategorie
			if err := rows.Scan(&cat.ID, &cat.NomCategorie, &cat.Description); err != nil {
				return err
			}
			out = append(out, cat)
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

func (c *Client) CreatePost(ctx context.Context, p *models.ForumPost) (*models.ForumPost, error) {
	const q = `
		INSERT INTO forum_posts (utilisateur_id, categorie_id, titre_post, contenu_post)
		VALUES ($1, $2, $3, $4)
		RETURNING id, utilisateur_id, categorie_id, titre_post, contenu_post, date_creation, dernier_commentaire_date`
	var out models.ForumPost
	err := c.db.QueryRowContext(ctx, q, p.UtilisateurID, p.CategorieID, p.TitrePost, p.ContenuPost).Scan(
		&out.ID, &out.UtilisateurID, &out.CategorieID, &out.TitrePost, &out.ContenuPost,
		&out.DateCreation, &out.DernierCommentaireDate)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPostsByCategorie(ctx context.Context, categorieID int64, limit, offset int) ([]models.ForumPost, int64, error) {
	const dataQ = `
		SELECT fp.id, fp.utilisateur_id, fp.categorie_id, fp.titre_post, fp.contenu_post,
		       fp.date_creation, fp.dernier_commentaire_date,
		       u.nom_complet AS auteur_nom, u.email AS auteur_email
		FROM forum_posts fp
		JOIN utilisateurs u ON fp.utilisateur_id = u.id
		WHERE fp.categorie_id = $1
		ORDER BY fp.dernier_commentaire_date DESC NULLS LAST, fp.date_creation DESC
		LIMIT $2 OFFSET $3`
	const countQ = `SELECT COUNT(*) FROM forum_posts WHERE categorie_id = $1`

	var (
		out   []models.ForumPost
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.db.QueryContext(gctx, dataQ, categorieID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var p models.ForumPost
			if err := rows.Scan(&p.ID, &p.UtilisateurID, &p.CategorieID, &p.TitrePost, &p.ContenuPost,
				&p.DateCreation, &p.DernierCommentaireDate, &p.AuteurNom, &p.AuteurEmail); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return c.db.QueryRowContext(gctx, countQ, categorieID).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (c *Client) GetPostByID(ctx context.Context, id int64) (*models.ForumPost, error) {
	const q = `
		SELECT fp.id, fp.utilisateur_id, fp.categorie_id, fp.titre_post, fp.contenu_post,
		       fp.date_creation, fp.dernier_commentaire_date,
		       u.nom_complet AS auteur_nom, u.email AS auteur_email
		FROM forum_posts fp
		JOIN utilisateurs u ON fp.utilisateur_id = u.id
		WHERE fp.id = $1`
	var p models.ForumPost
	err := c.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.UtilisateurID, &p.CategorieID,
		&p.TitrePost, &p.ContenuPost, &p.DateCreation, &p.DernierCommentaireDate, &p.AuteurNom, &p.AuteurEmail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddCommentaire inserts the comment and touches the parent post's
// dernier_commentaire_date in one transaction, so the timestamp can never
// move without its comment under concurrent writers.
func (c *Client) AddCommentaire(ctx context.Context, cm *models.ForumCommentaire) (*models.ForumCommentaire, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}

	const touchQ = `UPDATE forum_posts SET dernier_commentaire_date = now() WHERE id = $1`
	res, err := tx.ExecContext(ctx, touchQ, cm.PostID)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return nil, nil
	}

	const insertQ = `
		INSERT INTO forum_commentaires (post_id, utilisateur_id, contenu_commentaire)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, utilisateur_id, contenu_commentaire, date_creation`
	var out models.ForumCommentaire
	err = tx.QueryRowContext(ctx, insertQ, cm.PostID, cm.UtilisateurID, cm.ContenuCommentaire).Scan(
		&out.ID, &out.PostID, &out.UtilisateurID, &out.ContenuCommentaire, &out.DateCreation)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListCommentairesByPost(ctx context.Context, postID int64, limit, offset int) ([]models.ForumCommentaire, int64, error) {
	const dataQ = `
		SELECT fc.id, fc.post_id, fc.utilisateur_id, fc.contenu_commentaire, fc.date_creation,
		       u.nom_complet AS auteur_nom, u.email AS auteur_email
		FROM forum_commentaires fc
		JOIN utilisateurs u ON fc.utilisateur_id = u.id
		WHERE fc.post_id = $1
		ORDER BY fc.date_creation ASC
		LIMIT $2 OFFSET $3`
	const countQ = `SELECT COUNT(*) FROM forum_commentaires WHERE post_id = $1`

	var (
		out   []models.ForumCommentaire
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.db.QueryContext(gctx, dataQ, postID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var cm models.ForumCommentaire
			if err := rows.Scan(&cm.ID, &cm.PostID, &cm.UtilisateurID, &cm.ContenuCommentaire,
				&cm.DateCreation, &cm.AuteurNom, &cm.AuteurEmail); err != nil {
				return err
			}
			out = append(out, cm)
		}
		return rows.Err()
	})
	g.Go(func() error {
		return c.db.QueryRowContext(gctx, countQ, postID).Scan(&total)
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

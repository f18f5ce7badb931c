package database

import (
	"context"

	"github.com/agritunisie/connect/internal/models"
)

func (c *Client) GetHistorique(ctx context.Context, latitude, longitude float64, dateStart, dateEnd string) ([]models.MeteoJour, error) {
	const q = `
		SELECT to_char(date_prevision, 'YYYY-MM-DD') AS date,
		       temperature_min_celsius, temperature_max_celsius,
		       precipitations_mm, humidite_pourcentage, vitesse_vent_kmh,
		       description_meteo, icone_meteo_code
		FROM donnees_meteo_cache
		WHERE latitude = $1 AND longitude = $2 AND date_prevision >= $3 AND date_prevision <= $4
		ORDER BY date_prevision ASC`
	rows, err := c.db.QueryContext(ctx, q, latitude, longitude, dateStart, dateEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MeteoJour
	for rows.Next() {
		var j models.MeteoJour
		if err := rows.Scan(&j.Date, &j.TempMin, &j.TempMax, &j.PrecipitationsMm,
			&j.Humidite, &j.VitesseVent, &j.Description, &j.Icone); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// UpsertJours refreshes the daily cache with freshly fetched forecast
// summaries. Each (latitude, longitude, date) key keeps its latest values.
func (c *Client) UpsertJours(ctx context.Context, latitude, longitude float64, jours []models.MeteoJour) error {
	if len(jours) == 0 {
		return nil
	}
	const q = `
		INSERT INTO donnees_meteo_cache
			(latitude, longitude, date_prevision, temperature_min_celsius, temperature_max_celsius,
			 precipitations_mm, humidite_pourcentage, vitesse_vent_kmh, description_meteo, icone_meteo_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (latitude, longitude, date_prevision) DO UPDATE SET
			temperature_min_celsius = EXCLUDED.temperature_min_celsius,
			temperature_max_celsius = EXCLUDED.temperature_max_celsius,
			precipitations_mm = EXCLUDED.precipitations_mm,
			humidite_pourcentage = EXCLUDED.humidite_pourcentage,
			vitesse_vent_kmh = EXCLUDED.vitesse_vent_kmh,
			description_meteo = EXCLUDED.description_meteo,
			icone_meteo_code = EXCLUDED.icone_meteo_code`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range jours {
		j := &jours[i]
		if _, err := stmt.ExecContext(ctx, latitude, longitude, j.Date, j.TempMin, j.TempMax,
			j.PrecipitationsMm, j.Humidite, j.VitesseVent, j.Description, j.Icone); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *Client) LogInteractionGemini(ctx context.Context, l *models.InteractionGemini) error {
	const q = `
		INSERT INTO logs_interactions_gemini
			(utilisateur_id, type_requete_gemini, prompt_envoye, reponse_recue, succes_appel, erreur_message, duree_appel_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := c.db.ExecContext(ctx, q,
		l.UtilisateurID, l.TypeRequete, truncate(l.PromptEnvoye, 5000), truncate(l.ReponseRecue, 5000),
		l.SuccesAppel, l.ErreurMessage, l.DureeAppelMs)
	return err
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

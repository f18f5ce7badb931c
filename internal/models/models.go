package models

import (
	"encoding/json"
	"time"
)

// Roles assignable to a user account. The wire values are French because the
// whole API contract is French-facing.
const (
	RoleAgriculteur = "agriculteur"
	RoleAdmin       = "admin"
	RoleCollecteur  = "collecteur"
)

// Utilisateur represents a registered account.
type Utilisateur struct {
	ID                int64      `db:"id" json:"id"`
	NomComplet        string     `db:"nom_complet" json:"nom_complet"`
	Email             string     `db:"email" json:"email"`
	MotDePasseHash    string     `db:"mot_de_passe_hash" json:"-"`
	NumeroTelephone   *string    `db:"numero_telephone" json:"numero_telephone,omitempty"`
	Role              string     `db:"role" json:"role"`
	DerniereConnexion *time.Time `db:"derniere_connexion" json:"derniere_connexion,omitempty"`
	DateCreation      time.Time  `db:"date_creation" json:"date_creation"`
}

// ProfilPublic is the projection of Utilisateur returned by the API.
// The password hash never leaves the storage layer through it.
type ProfilPublic struct {
	ID         int64  `json:"id"`
	NomComplet string `json:"nom_complet"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

func (u *Utilisateur) ProfilPublic() ProfilPublic {
	return ProfilPublic{ID: u.ID, NomComplet: u.NomComplet, Email: u.Email, Role: u.Role}
}

// Parcelle is a user-owned land plot. Geometrie holds the GeoJSON document
// exactly as PostGIS serializes it with ST_AsGeoJSON.
type Parcelle struct {
	ID                   int64           `db:"id" json:"id"`
	UtilisateurID        int64           `db:"utilisateur_id" json:"utilisateur_id,omitempty"`
	NomParcelle          string          `db:"nom_parcelle" json:"nom_parcelle"`
	Description          *string         `db:"description" json:"description,omitempty"`
	Geometrie            json.RawMessage `db:"geometrie" json:"geometrie"`
	SuperficieCalculeeHa *float64        `db:"superficie_calculee_ha" json:"superficie_calculee_ha,omitempty"`
	TypeSolPredominant   *string         `db:"type_sol_predominant" json:"type_sol_predominant,omitempty"`
	CultureActuelleID    *int64          `db:"culture_actuelle_id" json:"culture_actuelle_id,omitempty"`
	DateCreation         time.Time       `db:"date_creation" json:"date_creation"`
}

// Culture is one entry of the read-mostly crop catalog.
type Culture struct {
	ID                      int64   `db:"id" json:"id"`
	NomCulture              string  `db:"nom_culture" json:"nom_culture"`
	DescriptionGenerale     *string `db:"description_generale" json:"description_generale,omitempty"`
	PeriodeSemisIdealeDebut *string `db:"periode_semis_ideale_debut" json:"periode_semis_ideale_debut,omitempty"`
	PeriodeSemisIdealeFin   *string `db:"periode_semis_ideale_fin" json:"periode_semis_ideale_fin,omitempty"`
	BesoinsEauMmCycle       *int    `db:"besoins_eau_mm_cycle" json:"besoins_eau_mm_cycle,omitempty"`
	TypeSolRecommande       *string `db:"type_sol_recommande" json:"type_sol_recommande,omitempty"`
}

// TypeAnimal is one entry of the livestock species catalog.
type TypeAnimal struct {
	ID                  int64   `db:"id" json:"id"`
	NomEspece           string  `db:"nom_espece" json:"nom_espece"`
	DescriptionGenerale *string `db:"description_generale" json:"description_generale,omitempty"`
}

// AnimalUtilisateur is one animal owned by a user, referencing the catalog.
type AnimalUtilisateur struct {
	ID                  int64      `db:"id" json:"id"`
	UtilisateurID       int64      `db:"utilisateur_id" json:"utilisateur_id,omitempty"`
	AnimalTypeID        int64      `db:"animal_type_id" json:"animal_type_id"`
	NomEspece           string     `db:"nom_espece" json:"nom_espece,omitempty"`
	IdentifiantAnimal   *string    `db:"identifiant_animal" json:"identifiant_animal,omitempty"`
	DateNaissanceApprox *time.Time `db:"date_naissance_approx" json:"date_naissance_approx,omitempty"`
	NotesSante          *string    `db:"notes_sante" json:"notes_sante,omitempty"`
}

// ProduitAgricole is a market product referenced by price observations.
type ProduitAgricole struct {
	ID               int64   `db:"id" json:"id"`
	NomProduit       string  `db:"nom_produit" json:"nom_produit"`
	CategorieProduit *string `db:"categorie_produit" json:"categorie_produit,omitempty"`
}

// Region is a Tunisian region referenced by price observations.
type Region struct {
	ID          int64   `db:"id" json:"id"`
	NomRegion   string  `db:"nom_region" json:"nom_region"`
	Gouvernorat *string `db:"gouvernorat" json:"gouvernorat,omitempty"`
}

// ObservationPrix is a single recorded market price data point. The joined
// product and region labels are populated on reads.
type ObservationPrix struct {
	ID                  int64     `db:"id" json:"id"`
	ProduitID           int64     `db:"produit_id" json:"produit_id,omitempty"`
	RegionID            int64     `db:"region_id" json:"region_id,omitempty"`
	NomMarcheSpecifique *string   `db:"nom_marche_specifique" json:"nom_marche_specifique,omitempty"`
	PrixMoyenKgOuUnite  float64   `db:"prix_moyen_kg_ou_unite" json:"prix_moyen_kg_ou_unite"`
	UnitePrix           string    `db:"unite_prix" json:"unite_prix"`
	DateObservation     time.Time `db:"date_observation" json:"date_observation"`
	SourceInformation   *string   `db:"source_information" json:"source_information,omitempty"`
	NomProduit          string    `db:"nom_produit" json:"nom_produit,omitempty"`
	CategorieProduit    *string   `db:"categorie_produit" json:"categorie_produit,omitempty"`
	NomRegion           string    `db:"nom_region" json:"nom_region,omitempty"`
	Gouvernorat         *string   `db:"gouvernorat" json:"gouvernorat,omitempty"`
}

// ForumCategorie groups forum posts.
type ForumCategorie struct {
	ID           int64   `db:"id" json:"id"`
	NomCategorie string  `db:"nom_categorie" json:"nom_categorie"`
	Description  *string `db:"description" json:"description,omitempty"`
}

// ForumPost is a thread started by a user inside one category.
type ForumPost struct {
	ID                     int64      `db:"id" json:"id"`
	UtilisateurID          int64      `db:"utilisateur_id" json:"utilisateur_id"`
	CategorieID            int64      `db:"categorie_id" json:"categorie_id"`
	TitrePost              string     `db:"titre_post" json:"titre_post"`
	ContenuPost            string     `db:"contenu_post" json:"contenu_post"`
	DateCreation           time.Time  `db:"date_creation" json:"date_creation"`
	DernierCommentaireDate *time.Time `db:"dernier_commentaire_date" json:"dernier_commentaire_date,omitempty"`
	AuteurNom              string     `db:"auteur_nom" json:"auteur_nom,omitempty"`
	AuteurEmail            string     `db:"auteur_email" json:"auteur_email,omitempty"`
}

// ForumCommentaire is one reply attached to a post.
type ForumCommentaire struct {
	ID                 int64     `db:"id" json:"id"`
	PostID             int64     `db:"post_id" json:"post_id"`
	UtilisateurID      int64     `db:"utilisateur_id" json:"utilisateur_id"`
	ContenuCommentaire string    `db:"contenu_commentaire" json:"contenu_commentaire"`
	DateCreation       time.Time `db:"date_creation" json:"date_creation"`
	AuteurNom          string    `db:"auteur_nom" json:"auteur_nom,omitempty"`
	AuteurEmail        string    `db:"auteur_email" json:"auteur_email,omitempty"`
}

// MeteoJour is one cached or aggregated daily weather summary.
type MeteoJour struct {
	Date             string  `db:"date_prevision" json:"date"`
	TempMin          float64 `db:"temperature_min_celsius" json:"temp_min"`
	TempMax          float64 `db:"temperature_max_celsius" json:"temp_max"`
	PrecipitationsMm float64 `db:"precipitations_mm" json:"precipitations_mm"`
	Humidite         float64 `db:"humidite_pourcentage" json:"humidite_pourcentage"`
	VitesseVent      float64 `db:"vitesse_vent_kmh" json:"vitesse_vent_kmh"`
	Description      string  `db:"description_meteo" json:"description"`
	Icone            string  `db:"icone_meteo_code" json:"icon"`
}

// InteractionGemini is one append-only audit row for an AI call. It is written
// on every request and never read back by the application.
type InteractionGemini struct {
	UtilisateurID int64  `db:"utilisateur_id"`
	TypeRequete   string `db:"type_requete_gemini"`
	PromptEnvoye  string `db:"prompt_envoye"`
	ReponseRecue  string `db:"reponse_recue"`
	SuccesAppel   bool   `db:"succes_appel"`
	ErreurMessage string `db:"erreur_message"`
	DureeAppelMs  int64  `db:"duree_appel_ms"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	Limit       int   `json:"limit"`
}

// NewPagination derives the page envelope from a total row count, with
// totalPages == ceil(totalItems/limit).
func NewPagination(page, limit int, totalItems int64) Pagination {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return Pagination{CurrentPage: page, TotalPages: totalPages, TotalItems: totalItems, Limit: limit}
}

// Page is the standard paginated response body.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

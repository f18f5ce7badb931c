package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/core"
	"github.com/agritunisie/connect/internal/models"
)

// Request type labels written to the interaction log.
const (
	requeteConseilCulture  = "conseil_culture"
	requeteOptimiserRation = "optimiser_ration"
	requeteResumeActualite = "resumer_actualite"
)

// ConseilService builds the French agronomy prompts, calls the generative
// model and records every interaction in the audit log. Without a configured
// provider it answers with labeled simulated content, which is still audited.
type ConseilService struct {
	provider core.AdviceProvider
	audit    core.InteractionLogStore
	log      zerolog.Logger
}

func NewConseilService(provider core.AdviceProvider, audit core.InteractionLogStore, log zerolog.Logger) *ConseilService {
	return &ConseilService{provider: provider, audit: audit, log: log}
}

// ConseilCultureInput carries the context the caller already assembled for an
// advice request. Geometry and weather history are optional.
type ConseilCultureInput struct {
	DonneesParcelle map[string]any `json:"donneesParcelle" validate:"required"`
	CultureInfo     map[string]any `json:"cultureInfo" validate:"required"`
	HistoriqueMeteo []models.MeteoJour
}

func (s *ConseilService) ConseilCulture(ctx context.Context, utilisateurID int64, in ConseilCultureInput) (map[string]string, error) {
	prompt := buildConseilCulturePrompt(in)
	texte, err := s.generate(ctx, utilisateurID, requeteConseilCulture, prompt,
		"Conseil de culture simulé par l'IA : Assurez un bon drainage et une fertilisation NPK équilibrée. Pensez à la rotation des cultures.")
	if err != nil {
		return nil, err
	}
	return map[string]string{"conseil": texte}, nil
}

// RationInput describes the herd and feed context for a ration optimisation.
type RationInput struct {
	TypeAnimal          string `json:"typeAnimal" validate:"required"`
	AlimentsDisponibles any    `json:"alimentsDisponibles" validate:"required"`
	StadeProduction     string `json:"stadeProduction" validate:"required"`
	Objectifs           string `json:"objectifs"`
}

func (s *ConseilService) OptimiserRation(ctx context.Context, utilisateurID int64, in RationInput) (map[string]string, error) {
	prompt := buildRationPrompt(in)
	texte, err := s.generate(ctx, utilisateurID, requeteOptimiserRation, prompt,
		"Ration optimisée simulée : 60% fourrage de bonne qualité, 30% concentré énergétique et protéique, 10% compléments minéraux et vitaminiques. Eau propre et fraîche à volonté.")
	if err != nil {
		return nil, err
	}
	return map[string]string{"ration_suggeree": texte}, nil
}

func (s *ConseilService) ResumerActualite(ctx context.Context, utilisateurID int64, texte string) (map[string]string, error) {
	prompt := "Vous êtes un assistant chargé de résumer des actualités agricoles pour des agriculteurs tunisiens. " +
		"Résumez le texte suivant en français, en mettant en évidence les 2-3 points les plus importants et les implications pratiques pour un agriculteur. " +
		"Soyez concis et clair.\n\nTexte à résumer:\n\"\"\"" + texte + "\n\"\"\""
	resume, err := s.generate(ctx, utilisateurID, requeteResumeActualite, prompt,
		"Résumé simulé: 1. Annonce de nouvelles subventions pour les semences certifiées. 2. Rappel des dates limites pour les déclarations de récolte. 3. Alerte sur une nouvelle maladie affectant les agrumes dans certaines régions.")
	if err != nil {
		return nil, err
	}
	return map[string]string{"resume": resume}, nil
}

// logInteraction writes the audit row. A failure here is logged and never
// changes the outcome returned to the caller.
func (s *ConseilService) logInteraction(ctx context.Context, l *models.InteractionGemini) {
	if err := s.audit.LogInteractionGemini(ctx, l); err != nil {
		s.log.Error().Err(err).Str("type", l.TypeRequete).Msg("gemini interaction log failed")
	}
}

// generate calls the model (or falls back to the simulated answer) and
// measures the call for the audit row.
func (s *ConseilService) generate(ctx context.Context, utilisateurID int64, typeRequete, prompt, simule string) (string, error) {
	start := time.Now()

	if !s.provider.Configured() {
		s.log.Warn().Str("type", typeRequete).Msg("gemini key missing, answering in simulated mode")
		s.logInteraction(ctx, &models.InteractionGemini{
			UtilisateurID: utilisateurID,
			TypeRequete:   typeRequete,
			PromptEnvoye:  prompt,
			ReponseRecue:  simule,
			SuccesAppel:   true,
			DureeAppelMs:  time.Since(start).Milliseconds(),
		})
		return simule, nil
	}

	texte, err := s.provider.Generate(ctx, prompt)
	duree := time.Since(start).Milliseconds()
	if err != nil {
		s.log.Error().Err(err).Str("type", typeRequete).Msg("gemini call failed")
		s.logInteraction(ctx, &models.InteractionGemini{
			UtilisateurID: utilisateurID,
			TypeRequete:   typeRequete,
			PromptEnvoye:  prompt,
			SuccesAppel:   false,
			ErreurMessage: err.Error(),
			DureeAppelMs:  duree,
		})
		return "", apperr.Upstream("Erreur lors de la génération du conseil par l'IA.", err)
	}

	s.logInteraction(ctx, &models.InteractionGemini{
		UtilisateurID: utilisateurID,
		TypeRequete:   typeRequete,
		PromptEnvoye:  prompt,
		ReponseRecue:  texte,
		SuccesAppel:   true,
		DureeAppelMs:  duree,
	})
	return texte, nil
}

func buildConseilCulturePrompt(in ConseilCultureInput) string {
	meteo := "Non fourni"
	if len(in.HistoriqueMeteo) > 0 {
		if raw, err := json.Marshal(in.HistoriqueMeteo); err == nil {
			meteo = clip(string(raw), 300) + "..."
		}
	}
	var b strings.Builder
	b.WriteString("Agissant en tant qu'expert agronome pour la Tunisie, fournissez des conseils de culture détaillés et pratiques.\n")
	fmt.Fprintf(&b, "Localisation approximative de la parcelle : %s.\n", stringField(in.DonneesParcelle, "localisation_approximative", "Non fournie"))
	fmt.Fprintf(&b, "Type de sol : %s.\n", stringField(in.DonneesParcelle, "type_sol_predominant", "Non fourni"))
	fmt.Fprintf(&b, "Superficie : %s ha.\n", stringField(in.DonneesParcelle, "superficie_calculee_ha", "Non fournie"))
	fmt.Fprintf(&b, "Culture envisagée: %s.\n", stringField(in.CultureInfo, "nom_culture", "Non spécifiée"))
	fmt.Fprintf(&b, "Description de la culture: %s.\n", stringField(in.CultureInfo, "description_generale", "Non fournie"))
	fmt.Fprintf(&b, "Historique météo récent: %s.\n\n", meteo)
	b.WriteString(`Conseils attendus (soyez spécifique et donnez des exemples si possible) :
1. Préparation du sol : Techniques, profondeur de labour, amendements nécessaires.
2. Période de semis/plantation optimale pour la région (si connue) et la culture.
3. Fertilisation : Type d'engrais (organique, minéral), quantités indicatives par hectare, périodes d'application.
4. Irrigation : Besoins estimés, fréquence, techniques recommandées.
5. Gestion des maladies et nuisibles courants pour cette culture en Tunisie : méthodes préventives et curatives (privilégier bio si possible).
6. Rotation des cultures : Suggestions de cultures précédentes/suivantes.
Répondez en français.`)
	return b.String()
}

func buildRationPrompt(in RationInput) string {
	objectifs := in.Objectifs
	if objectifs == "" {
		objectifs = "maintien et production standard"
	}
	aliments, err := json.Marshal(in.AlimentsDisponibles)
	if err != nil {
		aliments = []byte("[]")
	}
	var b strings.Builder
	b.WriteString("En tant qu'expert en nutrition animale pour des conditions tunisiennes, proposez une ration alimentaire optimisée.\n")
	fmt.Fprintf(&b, "Type d'animal : %s.\n", in.TypeAnimal)
	fmt.Fprintf(&b, "Stade de production / physiologique : %s.\n", in.StadeProduction)
	fmt.Fprintf(&b, "Objectifs spécifiques (optionnel) : %s.\n", objectifs)
	fmt.Fprintf(&b, "Aliments disponibles localement (avec quantités approximatives si possible) : %s.\n\n", aliments)
	b.WriteString(`Votre réponse doit inclure :
1. Une proposition de ration journalière équilibrée (quantités par aliment).
2. Une estimation des apports nutritionnels clés (ex: UFL, PDIN, PDIE pour ruminants; Énergie Métabolisable, Protéines Brutes pour monogastriques).
3. Des recommandations pratiques pour la distribution et l'abreuvement.
4. Des signaux d'alerte si la ration proposée est carencée ou excédentaire pour certains nutriments critiques.
Répondez en français.`)
	return b.String()
}

func stringField(m map[string]any, key, fallback string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return fallback
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return fallback
		}
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agritunisie/connect/internal/apperr"
	"github.com/agritunisie/connect/internal/models"
)

type fakeProvider struct {
	configured bool
	reply      string
	err        error
	prompts    []string
}

func (p *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.reply, p.err
}

func (p *fakeProvider) Configured() bool { return p.configured }
func (p *fakeProvider) Close() error     { return nil }

type fakeAudit struct {
	rows []models.InteractionGemini
	err  error
}

func (a *fakeAudit) LogInteractionGemini(_ context.Context, l *models.InteractionGemini) error {
	a.rows = append(a.rows, *l)
	return a.err
}

func rationInput() RationInput {
	return RationInput{
		TypeAnimal:          "ovin",
		AlimentsDisponibles: []any{"foin d'avoine", "orge"},
		StadeProduction:     "lactation",
	}
}

func TestConseilCultureUsesProvider(t *testing.T) {
	provider := &fakeProvider{configured: true, reply: "Labour profond avant les pluies d'automne."}
	audit := &fakeAudit{}
	svc := NewConseilService(provider, audit, zerolog.Nop())

	out, err := svc.ConseilCulture(context.Background(), 7, ConseilCultureInput{
		DonneesParcelle: map[string]any{"type_sol_predominant": "argileux"},
		CultureInfo:     map[string]any{"nom_culture": "Blé dur"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Labour profond avant les pluies d'automne.", out["conseil"])

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "Blé dur")
	assert.Contains(t, provider.prompts[0], "argileux")

	require.Len(t, audit.rows, 1)
	row := audit.rows[0]
	assert.Equal(t, int64(7), row.UtilisateurID)
	assert.Equal(t, "conseil_culture", row.TypeRequete)
	assert.True(t, row.SuccesAppel)
	assert.Equal(t, "Labour profond avant les pluies d'automne.", row.ReponseRecue)
}

func TestConseilCultureSimulatedWhenUnconfigured(t *testing.T) {
	provider := &fakeProvider{configured: false}
	audit := &fakeAudit{}
	svc := NewConseilService(provider, audit, zerolog.Nop())

	out, err := svc.ConseilCulture(context.Background(), 7, ConseilCultureInput{
		DonneesParcelle: map[string]any{},
		CultureInfo:     map[string]any{},
	})
	require.NoError(t, err)
	assert.Contains(t, out["conseil"], "simulé")
	assert.Empty(t, provider.prompts)

	// Simulated answers are audited too.
	require.Len(t, audit.rows, 1)
	assert.True(t, audit.rows[0].SuccesAppel)
}

func TestOptimiserRationProviderFailure(t *testing.T) {
	provider := &fakeProvider{configured: true, err: errors.New("quota exceeded")}
	audit := &fakeAudit{}
	svc := NewConseilService(provider, audit, zerolog.Nop())

	_, err := svc.OptimiserRation(context.Background(), 7, rationInput())
	require.Error(t, err)

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, e.Status())

	require.Len(t, audit.rows, 1)
	row := audit.rows[0]
	assert.Equal(t, "optimiser_ration", row.TypeRequete)
	assert.False(t, row.SuccesAppel)
	assert.Equal(t, "quota exceeded", row.ErreurMessage)
}

func TestAuditFailureNeverMasksOutcome(t *testing.T) {
	provider := &fakeProvider{configured: true, reply: "60% fourrage, 30% concentré, 10% compléments."}
	audit := &fakeAudit{err: errors.New("disk full")}
	svc := NewConseilService(provider, audit, zerolog.Nop())

	out, err := svc.OptimiserRation(context.Background(), 7, rationInput())
	require.NoError(t, err)
	assert.Equal(t, "60% fourrage, 30% concentré, 10% compléments.", out["ration_suggeree"])
}

func TestResumerActualitePrompt(t *testing.T) {
	provider := &fakeProvider{configured: true, reply: "1. Subventions. 2. Sécheresse."}
	audit := &fakeAudit{}
	svc := NewConseilService(provider, audit, zerolog.Nop())

	texte := "Le ministère de l'agriculture annonce de nouvelles subventions pour les semences certifiées dès octobre."
	out, err := svc.ResumerActualite(context.Background(), 7, texte)
	require.NoError(t, err)
	assert.Equal(t, "1. Subventions. 2. Sécheresse.", out["resume"])

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], texte)
	assert.Equal(t, "resumer_actualite", audit.rows[0].TypeRequete)
}

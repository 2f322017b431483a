package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
)

func testTemplate() models.EmailTemplate {
	return models.EmailTemplate{
		Key:     "enrollment_status_confirmed_student",
		Role:    models.RoleRecipientStudent,
		Subject: "Inscription confirmée - {{formationTitle}}",
		Body: `<p>Bonjour {{studentName}},</p>
<p>Votre inscription à {{formationTitle}} est confirmée.</p>
{{#customMessage}}<div class="note"><p>{{customMessage}}</p></div>{{/customMessage}}
<p>A bientôt.</p>`,
		Variables: []string{"studentName", "formationTitle", "customMessage"},
	}
}

func TestRenderSubstitutesVariables(t *testing.T) {
	r := NewRenderer()
	message, err := r.Render(testTemplate(), models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Inscription confirmée - Formation Initiale Taxi", message.Subject)
	assert.Contains(t, message.Body, "Bonjour Marie Dupont")
	assert.NotContains(t, message.Body, "{{")
}

func TestRenderMissingVariableFails(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render(testTemplate(), models.RenderContext{
		"studentName": "Marie Dupont",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrMissingVariable))
	assert.Contains(t, err.Error(), "formationTitle")
}

func TestRenderCustomMessageIsOptional(t *testing.T) {
	r := NewRenderer()
	message, err := r.Render(testTemplate(), models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
	})
	require.NoError(t, err)
	assert.NotContains(t, message.Body, "customMessage")
	assert.NotContains(t, message.Body, `<div class="note">`)
}

func TestRenderCustomMessageBlockKept(t *testing.T) {
	r := NewRenderer()
	message, err := r.Render(testTemplate(), models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
		"customMessage":  "Pensez à apporter votre permis.",
	})
	require.NoError(t, err)
	assert.Contains(t, message.Body, `<div class="note">`)
	assert.Contains(t, message.Body, "Pensez à apporter votre permis.")
	assert.NotContains(t, message.Body, "{{#customMessage}}")
	assert.NotContains(t, message.Body, "{{/customMessage}}")
}

func TestRenderBlankCustomMessageDropsBlock(t *testing.T) {
	r := NewRenderer()
	message, err := r.Render(testTemplate(), models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
		"customMessage":  "   ",
	})
	require.NoError(t, err)
	assert.NotContains(t, message.Body, `<div class="note">`)
}

func TestRenderEscapesCustomMessage(t *testing.T) {
	r := NewRenderer()
	message, err := r.Render(testTemplate(), models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
		"customMessage":  `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, message.Body, "<script>")
	assert.Contains(t, message.Body, "&lt;script&gt;")
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer()
	context := models.RenderContext{
		"studentName":    "Marie Dupont",
		"formationTitle": "Formation Initiale Taxi",
		"customMessage":  "Bienvenue",
	}
	first, err := r.Render(testTemplate(), context)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := r.Render(testTemplate(), context)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSeedTemplatesRenderCleanly(t *testing.T) {
	r := NewRenderer()
	context := models.RenderContext{}
	for _, name := range []string{
		"studentName", "formationTitle", "sessionDate", "location", "price",
		"reservationId", "submissionDate", "statusLabel", "entityId",
		"vehicleModel", "vehiclePlate", "examCenter", "pickupLocation",
		"rentalDates", "returnDate", "totalPrice", "rentalId",
	} {
		context[name] = "value"
	}
	for _, template := range SeedTemplates() {
		message, err := r.Render(template, context)
		require.NoError(t, err, "template %s", template.Key)
		assert.False(t, strings.Contains(message.Body, "{{"), "template %s leaked a placeholder", template.Key)
	}
}

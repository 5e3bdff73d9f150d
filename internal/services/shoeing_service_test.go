package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"farrier-backend/internal/models"
)

func TestHorseFromIdentifier(t *testing.T) {
	t.Run("composite splits into name and barn", func(t *testing.T) {
		h := horseFromIdentifier("Star - [North Barn]")
		assert.Equal(t, "Star", h.Name)
		assert.Equal(t, "North Barn", h.BarnTrainer)
		assert.Equal(t, models.HorseStatusPending, h.Status)
	})

	t.Run("plain text becomes the name", func(t *testing.T) {
		h := horseFromIdentifier("Star")
		assert.Equal(t, "Star", h.Name)
		assert.Empty(t, h.BarnTrainer)
	})

	t.Run("round trip through the composite", func(t *testing.T) {
		h := horseFromIdentifier("Star - [North Barn]")
		assert.Equal(t, "Star - [North Barn]", h.Identifier())
	})
}

func TestNormalizeCost(t *testing.T) {
	assert.Equal(t, "250.00", normalizeCost("$250.00"))
	assert.Equal(t, "1250.50", normalizeCost("$1,250.50"))
	assert.Equal(t, "100.00", normalizeCost("100"))
	assert.Empty(t, normalizeCost(""))

	// Free-form legacy values persist verbatim
	assert.Equal(t, "call for pricing", normalizeCost("call for pricing"))
}

package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Reabastecimiento-api/internal/domain/inventory"
)

func TestSuggestedReorderQuantity(t *testing.T) {
	assert.Equal(t, 20, inventory.SuggestedReorderQuantity(10, 0), "mínimo 2 × umbral")
	assert.Equal(t, 20, inventory.SuggestedReorderQuantity(10, 20))
	assert.Equal(t, 35, inventory.SuggestedReorderQuantity(10, 35), "la demanda pronosticada domina")
}

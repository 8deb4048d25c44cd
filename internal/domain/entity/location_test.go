package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/retail-ops-api/internal/domain/entity"
)

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "Blantyre", entity.NormalizeLocation("  blantyre "))
	assert.Equal(t, "Lilongwe", entity.NormalizeLocation("LILONGWE"))
	assert.Equal(t, "Area 47", entity.NormalizeLocation("area   47"))
	assert.Equal(t, "", entity.NormalizeLocation("   "))
}

func TestIsAllowedLocation(t *testing.T) {
	assert.True(t, entity.IsAllowedLocation("mzuzu", nil), "usa DefaultLocations si no hay conjunto")
	assert.False(t, entity.IsAllowedLocation("Karonga", nil))
	assert.True(t, entity.IsAllowedLocation("karonga", []string{"Karonga", "Lilongwe"}))
	assert.False(t, entity.IsAllowedLocation("Zomba", []string{"Karonga"}))
	assert.False(t, entity.IsAllowedLocation("", nil))
}

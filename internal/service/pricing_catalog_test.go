package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingCatalogTierIDs(t *testing.T) {
	catalog := NewPricingCatalog()

	ids := catalog.TierIDs()
	assert.Equal(t, []string{"NeighborhoodCellar", "EstablishedShop", "WorldClassClub"}, ids)

	// The returned slice is a copy; mutating it must not affect the catalog.
	ids[0] = "mutated"
	assert.Equal(t, "NeighborhoodCellar", catalog.TierIDs()[0])
}

func TestPricingCatalogIsValid(t *testing.T) {
	catalog := NewPricingCatalog()

	for _, id := range catalog.TierIDs() {
		assert.True(t, catalog.IsValid(id), "expected %q to be valid", id)
	}
	assert.False(t, catalog.IsValid(""))
	assert.False(t, catalog.IsValid("PlatinumUnicorn"))
	assert.False(t, catalog.IsValid("neighborhoodcellar")) // case sensitive
}

func TestPricingCatalogDescribeTotality(t *testing.T) {
	catalog := NewPricingCatalog()

	// Describe never fails, for any input.
	inputs := []string{"", "EstablishedShop", "bogus", "NEIGHBORHOODCELLAR", "NeighborhoodCellar", "💣"}
	for _, id := range inputs {
		tier := catalog.Describe(id)
		assert.NotEmpty(t, tier.ID, "Describe(%q) returned empty tier", id)
		assert.NotEmpty(t, tier.Name)
		assert.Greater(t, tier.MonthlyPrice, 0.0)
	}

	// Known ids return themselves, unknown ids fall back to the default.
	assert.Equal(t, "EstablishedShop", catalog.Describe("EstablishedShop").ID)
	assert.Equal(t, DefaultPricingTierID, catalog.Describe("bogus").ID)
	assert.Equal(t, DefaultPricingTierID, catalog.Describe("").ID)
}

package service

// PricingTier describes one business subscription plan: what the
// restaurant itself pays ClubCuvee, not what its customers pay it.
type PricingTier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MonthlyPrice float64 `json:"monthly_price"`
	Description  string  `json:"description"`
}

// DefaultPricingTierID is the fallback used by Describe for unknown ids
const DefaultPricingTierID = "NeighborhoodCellar"

// pricingTierOrder preserves the display ordering of the catalog
var pricingTierOrder = []string{
	"NeighborhoodCellar",
	"EstablishedShop",
	"WorldClassClub",
}

var pricingTiers = map[string]PricingTier{
	"NeighborhoodCellar": {
		ID:           "NeighborhoodCellar",
		Name:         "Neighborhood Cellar",
		MonthlyPrice: 199,
		Description:  "For single-location shops starting a wine club with up to three membership tiers.",
	},
	"EstablishedShop": {
		ID:           "EstablishedShop",
		Name:         "Established Shop",
		MonthlyPrice: 349,
		Description:  "For established restaurants and shops with an active customer base and regular events.",
	},
	"WorldClassClub": {
		ID:           "WorldClassClub",
		Name:         "World-Class Club",
		MonthlyPrice: 599,
		Description:  "For multi-location groups and destination programs with concierge support.",
	},
}

// PricingCatalog is a static, process-wide lookup of business pricing
// tiers. The data is immutable and safe for concurrent use.
type PricingCatalog struct{}

// NewPricingCatalog creates a new PricingCatalog
func NewPricingCatalog() *PricingCatalog {
	return &PricingCatalog{}
}

// TierIDs returns the catalog ids in display order
func (c *PricingCatalog) TierIDs() []string {
	ids := make([]string, len(pricingTierOrder))
	copy(ids, pricingTierOrder)
	return ids
}

// List returns the full catalog in display order
func (c *PricingCatalog) List() []PricingTier {
	tiers := make([]PricingTier, 0, len(pricingTierOrder))
	for _, id := range pricingTierOrder {
		tiers = append(tiers, pricingTiers[id])
	}
	return tiers
}

// IsValid returns true if the id names a catalog tier
func (c *PricingCatalog) IsValid(id string) bool {
	_, ok := pricingTiers[id]
	return ok
}

// Describe returns the tier for the given id, falling back to the
// default tier for unknown ids. This is a display lookup, not a
// validation gate; it never fails.
func (c *PricingCatalog) Describe(id string) PricingTier {
	if tier, ok := pricingTiers[id]; ok {
		return tier
	}
	return pricingTiers[DefaultPricingTierID]
}

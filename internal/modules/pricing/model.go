// README: Vehicle catalog and delivery estimate models.
package pricing

// ServiceTier is a delivery speed/priority class affecting price and ETA.
type ServiceTier string

const (
	TierPriority  ServiceTier = "priority"
	TierRegular   ServiceTier = "regular"
	TierScheduled ServiceTier = "scheduled"
)

// Vehicle is one entry of the vehicle catalog. Rates are read-only business
// configuration supplied by the catalog store.
type Vehicle struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BaseRate  float64 `json:"base_rate"`
	PerKmRate float64 `json:"per_km_rate"`
}

// Estimate is the full fee and ETA breakdown for one delivery route. It is
// ephemeral: recomputed whenever an endpoint or the vehicle changes, and
// never the source of truth for a confirmed order.
type Estimate struct {
	DistanceKm       float64 `json:"distance_km"`
	BaseRate         float64 `json:"base_rate"`
	PerKmRate        float64 `json:"per_km_rate"`
	ServiceSurcharge float64 `json:"service_surcharge"`
	TotalFee         float64 `json:"total_fee"`
	EtaMinutes       int     `json:"eta_minutes"`
	EtaLabel         string  `json:"eta_label"`
}

// SurchargeTable maps a service tier to its flat fee adjustment. Values are
// injected from configuration; a scheduled discount may be negative, the fee
// is floored at the vehicle's base rate.
type SurchargeTable map[ServiceTier]float64

// TierProfile holds the speed and pickup-overhead assumption used to derive
// an ETA for one tier. Like surcharges these are business numbers, injected
// from configuration.
type TierProfile struct {
	SpeedKmh    float64
	OverheadMin int
}

// TierProfileTable maps a service tier to its ETA profile. The table also
// defines which tiers exist: pricing a tier absent from it fails.
type TierProfileTable map[ServiceTier]TierProfile

// DefaultTierProfiles returns the stock ETA assumptions.
func DefaultTierProfiles() TierProfileTable {
	return TierProfileTable{
		TierPriority:  {SpeedKmh: 35, OverheadMin: 5},
		TierRegular:   {SpeedKmh: 28, OverheadMin: 12},
		TierScheduled: {SpeedKmh: 22, OverheadMin: 25},
	}
}

// Package economy models the city economy: per-business financials,
// market demand and supply, taxation, trade-good pricing, and the city
// credit rating. All state is engine-owned; callers get copies.
package economy

import (
	"github.com/google/uuid"

	"github.com/urbansim/citycore/internal/city"
)

// Revenue blend coefficients.
const (
	accessibilityK = 0.3
	footTrafficK   = 0.4
	prestigeK      = 0.2

	bankruptcyDays    = 30.0 // days of loss before risk saturates
	bankruptcyCullAge = 45.0 // sustained-loss days before closure
	bankruptcyCullMin = 0.8  // minimum risk before closure
)

// BusinessType refines a zone into a revenue profile.
type BusinessType string

const (
	TypeShop    BusinessType = "shop"
	TypeFactory BusinessType = "factory"
	TypeFirm    BusinessType = "firm"
)

// typeProfile holds per-type revenue and cost shape.
type typeProfile struct {
	revenueMul   float64
	baseCost     float64 // fixed daily cost
	revenueShare float64 // cost-of-goods fraction of revenue
	wage         float64 // monthly wage per employee
}

var typeProfiles = map[BusinessType]typeProfile{
	TypeShop:    {revenueMul: 1.0, baseCost: 40, revenueShare: 0.25, wage: 1800},
	TypeFactory: {revenueMul: 1.4, baseCost: 90, revenueShare: 0.15, wage: 2200},
	TypeFirm:    {revenueMul: 1.2, baseCost: 60, revenueShare: 0.05, wage: 3000},
}

// businessTypeFor maps a non-residential zone to its business type.
func businessTypeFor(zone city.ZoneType) (BusinessType, bool) {
	switch zone {
	case city.ZoneCommercial:
		return TypeShop, true
	case city.ZoneIndustrial:
		return TypeFactory, true
	case city.ZoneOffice:
		return TypeFirm, true
	default:
		return "", false
	}
}

// Business is one operating enterprise. Created when a building completes
// construction in a non-residential zone; destroyed on bankruptcy or
// building removal.
type Business struct {
	ID         uuid.UUID    `json:"id"`
	BuildingID string       `json:"building_id"` // foreign reference, not owned
	Type       BusinessType `json:"type"`

	Accessibility        float64 `json:"accessibility"`
	FootTraffic          float64 `json:"foot_traffic"`
	Prestige             float64 `json:"prestige"`
	Revenue              float64 `json:"revenue"`
	OperatingCosts       float64 `json:"operating_costs"`
	Profit               float64 `json:"profit"`
	Employees            int     `json:"employees"`
	MaxEmployees         int     `json:"max_employees"`
	WagesPerEmployee     float64 `json:"wages_per_employee"`
	Efficiency           float64 `json:"efficiency"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	DaysSinceProfit      float64 `json:"days_since_profit"`
	BankruptcyRisk       float64 `json:"bankruptcy_risk"`
	IsOperational        bool    `json:"is_operational"`
}

// newBusiness opens a business for a completed non-residential building.
func newBusiness(b city.Building, bt BusinessType) *Business {
	maxEmployees := b.Capacity
	if maxEmployees < 1 {
		maxEmployees = 1
	}
	return &Business{
		ID:               uuid.New(),
		BuildingID:       b.ID,
		Type:             bt,
		MaxEmployees:     maxEmployees,
		WagesPerEmployee: typeProfiles[bt].wage,
		IsOperational:    true,
	}
}

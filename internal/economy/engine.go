package economy

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/urbansim/citycore/internal/city"
)

// Config holds the fiscal knobs for the economic engine.
type Config struct {
	PropertyTaxRate   float64 // annual fraction of property value
	BusinessTaxRate   float64 // flat fraction of positive profit
	ServiceCostPerCap float64 // daily government spend per resident
	StartingFunds     float64
	TargetFunds       float64 // funds level considered fully healthy
	StartingDebt      float64
}

// DefaultConfig returns workable fiscal defaults.
func DefaultConfig() Config {
	return Config{
		PropertyTaxRate:   0.012,
		BusinessTaxRate:   0.10,
		ServiceCostPerCap: 0.8,
		StartingFunds:     50_000,
		TargetFunds:       200_000,
	}
}

// Report is the per-update economic snapshot consumed by external callers.
type Report struct {
	GDP               float64 `json:"gdp"`
	UnemploymentPct   float64 `json:"unemployment_pct"`
	InflationPct      float64 `json:"inflation_pct"`
	TradeBalance      float64 `json:"trade_balance"`
	GovernmentRevenue float64 `json:"government_revenue"`
	GovernmentExpense float64 `json:"government_expenses"`
	CityRating        string  `json:"city_rating"`
}

// MarketAnalysis is a read-only trade and demand snapshot.
type MarketAnalysis struct {
	Goods  map[string]TradeGood                           `json:"goods"`
	Demand map[city.ZoneType]map[city.WealthLevel]float64 `json:"demand"`
	Supply map[city.ZoneType]map[city.WealthLevel]float64 `json:"supply"`
	Funds  float64                                        `json:"funds"`
	Debt   float64                                        `json:"debt"`
}

// Engine owns the business arena, trade-good catalog, and city treasury.
type Engine struct {
	cfg Config
	rng *rand.Rand

	businesses map[uuid.UUID]*Business
	byBuilding map[string]uuid.UUID
	goods      map[string]*TradeGood

	funds float64
	debt  float64

	demand map[city.ZoneType]map[city.WealthLevel]float64
	supply map[city.ZoneType]map[city.WealthLevel]float64
}

// New creates an economic engine. The rng drives nothing load-bearing today
// but is the injection point for future stochastic market noise.
func New(cfg Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Engine{
		cfg:        cfg,
		rng:        rng,
		businesses: make(map[uuid.UUID]*Business),
		byBuilding: make(map[string]uuid.UUID),
		goods:      newGoods(),
		funds:      cfg.StartingFunds,
		debt:       cfg.StartingDebt,
		demand:     emptyBuckets(),
		supply:     emptyBuckets(),
	}
}

func emptyBuckets() map[city.ZoneType]map[city.WealthLevel]float64 {
	m := make(map[city.ZoneType]map[city.WealthLevel]float64, len(city.AllZones))
	for _, z := range city.AllZones {
		m[z] = make(map[city.WealthLevel]float64, len(city.AllWealthLevels))
	}
	return m
}

var wealthMultiplier = map[city.WealthLevel]float64{
	city.WealthLow:    0.7,
	city.WealthMedium: 1.0,
	city.WealthHigh:   1.6,
}

var zoneDemandMultiplier = map[city.ZoneType]float64{
	city.ZoneResidential: 1.0,
	city.ZoneCommercial:  0.8,
	city.ZoneIndustrial:  0.5,
	city.ZoneOffice:      0.6,
}

// UpdateEconomy advances the economy by dt simulated days and returns the
// report. Expected degenerate inputs (no buildings, no agents) produce a
// zeroed report rather than errors; every denominator is guarded.
func (e *Engine) UpdateEconomy(dt float64, buildings []city.Building, agents []city.Agent) Report {
	if dt <= 0 {
		dt = 0
	}

	population := len(agents)
	employed := 0
	var totalEducation float64
	for _, a := range agents {
		if a.Employed {
			employed++
		}
		totalEducation += a.Education
	}
	avgSkill := totalEducation / math.Max(1, float64(population))
	employmentRate := float64(employed) / math.Max(1, float64(population))

	e.rebuildBuckets(population, employmentRate, buildings)
	e.syncBusinesses(buildings)

	zoneCapacity := make(map[city.ZoneType]float64, len(city.AllZones))
	buildingIndex := make(map[string]city.Building, len(buildings))
	for _, b := range buildings {
		buildingIndex[b.ID] = b
		if b.Status == city.StatusOperational {
			zoneCapacity[b.Zone] += float64(b.Capacity)
		}
	}

	var totalRevenue, totalProfit, businessTax float64
	profitable := 0
	active := 0
	for _, biz := range e.businesses {
		b, ok := buildingIndex[biz.BuildingID]
		if !ok {
			continue
		}
		e.updateBusiness(biz, b, buildings, avgSkill, dt)
		active++
		totalRevenue += biz.Revenue
		totalProfit += biz.Profit
		if biz.Profit > 0 {
			profitable++
			if biz.IsOperational {
				businessTax += biz.Profit * e.cfg.BusinessTaxRate
			}
		}
	}
	e.cullBankrupt()

	propertyTax := 0.0
	for _, b := range buildings {
		if b.Status != city.StatusOperational {
			continue
		}
		// Annual rate, collected monthly, pro-rated to this update's days.
		propertyTax += e.cfg.PropertyTaxRate * b.PropertyValue / 12 * (dt / 30)
	}

	e.updateTradeGoods(population, zoneCapacity)

	revenue := propertyTax + businessTax*dt
	expenses := float64(population)*e.cfg.ServiceCostPerCap*dt + e.debt*0.0001*dt
	e.funds += revenue - expenses

	profitableFrac := float64(profitable) / math.Max(1, float64(active))

	report := Report{
		GDP:               totalRevenue * 365,
		UnemploymentPct:   (1 - employmentRate) * 100,
		InflationPct:      e.inflationPct(),
		TradeBalance:      e.tradeBalance(),
		GovernmentRevenue: revenue,
		GovernmentExpense: expenses,
		CityRating:        e.creditRating(profitableFrac),
	}
	if population == 0 {
		report.UnemploymentPct = 0
	}
	return report
}

// rebuildBuckets recomputes demand and supply per (zone, wealth) bucket.
// Demand = population base × employment adjustment × wealth × zone
// multipliers; supply = operational capacity in matching buildings.
func (e *Engine) rebuildBuckets(population int, employmentRate float64, buildings []city.Building) {
	e.demand = emptyBuckets()
	e.supply = emptyBuckets()

	base := float64(population) * 0.1
	employmentAdj := 0.5 + employmentRate // jobless cities still need housing
	for _, z := range city.AllZones {
		for _, w := range city.AllWealthLevels {
			e.demand[z][w] = base * employmentAdj * wealthMultiplier[w] * zoneDemandMultiplier[z]
		}
	}
	for _, b := range buildings {
		if b.Status == city.StatusOperational {
			e.supply[b.Zone][b.Wealth] += float64(b.Capacity)
		}
	}
}

// syncBusinesses opens businesses for operational non-residential buildings
// that lack one and closes businesses whose building vanished.
func (e *Engine) syncBusinesses(buildings []city.Building) {
	seen := make(map[string]bool, len(buildings))
	for _, b := range buildings {
		seen[b.ID] = true
		if b.Status != city.StatusOperational {
			continue
		}
		bt, ok := businessTypeFor(b.Zone)
		if !ok {
			continue
		}
		if _, exists := e.byBuilding[b.ID]; !exists {
			biz := newBusiness(b, bt)
			e.businesses[biz.ID] = biz
			e.byBuilding[b.ID] = biz.ID
		}
	}
	for buildingID, bizID := range e.byBuilding {
		if !seen[buildingID] {
			delete(e.businesses, bizID)
			delete(e.byBuilding, buildingID)
		}
	}
}

// updateBusiness recomputes one business's financials for this update.
// The profit identity (profit = revenue − costs) holds by construction.
func (e *Engine) updateBusiness(biz *Business, b city.Building, buildings []city.Building, avgSkill, dt float64) {
	biz.IsOperational = b.Status == city.StatusOperational
	if !biz.IsOperational {
		biz.Revenue = 0
		biz.OperatingCosts = 0
		biz.Profit = 0
		return
	}

	biz.Accessibility = accessibility(b, buildings)
	biz.FootTraffic = footTraffic(b, buildings)
	biz.Prestige = city.Clamp01(0.3*float64(b.Wealth)/2 + 0.4*b.Quality + 0.3*float64(b.Level-1)/4)

	demandRatio := city.Clamp(
		e.demand[b.Zone][b.Wealth]/math.Max(1, e.supply[b.Zone][b.Wealth]),
		0.1, 2.0,
	)

	profile := typeProfiles[biz.Type]
	base := 80.0 * math.Max(1, float64(b.Capacity)) / 10
	residentFactor := 0.5 + biz.FootTraffic

	biz.Revenue = base *
		(1 + biz.Accessibility*accessibilityK) *
		(1 + biz.FootTraffic*footTrafficK) *
		(1 + biz.Prestige*prestigeK) *
		demandRatio * residentFactor * profile.revenueMul

	// Staff to demand, never beyond capacity, never fully unstaffed.
	target := int(math.Round(float64(biz.MaxEmployees) * city.Clamp01(demandRatio)))
	if target < 1 {
		target = 1
	}
	biz.Employees = target

	rent := b.PropertyValue * 0.0008
	utilities := 2 * float64(b.Capacity)
	wages := float64(biz.Employees) * biz.WagesPerEmployee / 30
	biz.OperatingCosts = profile.baseCost + rent + utilities + wages + profile.revenueShare*biz.Revenue
	biz.Profit = biz.Revenue - biz.OperatingCosts

	staffing := float64(biz.Employees) / math.Max(1, float64(biz.MaxEmployees))
	balance := city.Clamp01(demandRatio / 2)
	biz.Efficiency = city.Clamp01(
		0.25*biz.Accessibility + 0.2*biz.Prestige + 0.25*avgSkill + 0.15*b.Quality + 0.15*balance,
	)
	biz.CustomerSatisfaction = city.Clamp01(0.6*biz.Efficiency + 0.4*staffing)

	if biz.Profit > 0 {
		biz.DaysSinceProfit = 0
	} else {
		biz.DaysSinceProfit += dt
	}
	biz.BankruptcyRisk = math.Min(1, biz.DaysSinceProfit/bankruptcyDays)
}

// cullBankrupt closes businesses past both the sustained-loss and risk
// thresholds.
func (e *Engine) cullBankrupt() {
	for id, biz := range e.businesses {
		if biz.DaysSinceProfit > bankruptcyCullAge && biz.BankruptcyRisk > bankruptcyCullMin {
			delete(e.byBuilding, biz.BuildingID)
			delete(e.businesses, id)
		}
	}
}

// accessibility scores how embedded a building is in the built-up mass.
func accessibility(b city.Building, buildings []city.Building) float64 {
	near := 0
	for _, other := range buildings {
		if other.ID == b.ID || other.Status != city.StatusOperational {
			continue
		}
		if b.Position.DistanceXZ(other.Position) <= 60 {
			near++
		}
	}
	return city.Clamp01(float64(near) / 10)
}

// footTraffic estimates nearby pedestrian density from residential
// occupancy, weighted down with distance.
func footTraffic(b city.Building, buildings []city.Building) float64 {
	total := 0.0
	for _, other := range buildings {
		if other.Zone != city.ZoneResidential || other.Status != city.StatusOperational {
			continue
		}
		d := b.Position.DistanceXZ(other.Position)
		if d > 100 {
			continue
		}
		total += float64(other.Capacity) / (1 + d/10)
	}
	return city.Clamp01(total / 50)
}

// inflationPct measures current prices against catalog base prices.
func (e *Engine) inflationPct() float64 {
	var cur, base float64
	for _, g := range e.goods {
		cur += g.CurrentPrice
		base += g.BasePrice
	}
	return (cur/math.Max(1, base) - 1) * 100
}

// creditRating buckets a weighted fiscal score into discrete tiers.
func (e *Engine) creditRating(profitableFrac float64) string {
	fundsRatio := city.Clamp01(e.funds / math.Max(1, e.cfg.TargetFunds))
	debtRatio := city.Clamp01(e.debt / math.Max(1, e.cfg.TargetFunds))
	score := 0.4*fundsRatio + 0.4*profitableFrac + 0.2*(1-debtRatio)

	switch {
	case score >= 0.9:
		return "AAA"
	case score >= 0.75:
		return "AA"
	case score >= 0.6:
		return "A"
	case score >= 0.45:
		return "BBB"
	case score >= 0.3:
		return "BB"
	case score >= 0.15:
		return "B"
	default:
		return "C"
	}
}

// Businesses returns snapshot copies of every business; the arena itself
// is never exposed for mutation.
func (e *Engine) Businesses() []Business {
	out := make([]Business, 0, len(e.businesses))
	for _, biz := range e.businesses {
		out = append(out, *biz)
	}
	return out
}

// Funds returns the current city treasury balance.
func (e *Engine) Funds() float64 { return e.funds }

// MarketAnalysisSnapshot returns read-only copies of the trade catalog and
// demand/supply buckets.
func (e *Engine) MarketAnalysisSnapshot() MarketAnalysis {
	goods := make(map[string]TradeGood, len(e.goods))
	for id, g := range e.goods {
		goods[id] = *g
	}
	demand := emptyBuckets()
	supply := emptyBuckets()
	for _, z := range city.AllZones {
		for _, w := range city.AllWealthLevels {
			demand[z][w] = e.demand[z][w]
			supply[z][w] = e.supply[z][w]
		}
	}
	return MarketAnalysis{
		Goods:  goods,
		Demand: demand,
		Supply: supply,
		Funds:  e.funds,
		Debt:   e.debt,
	}
}

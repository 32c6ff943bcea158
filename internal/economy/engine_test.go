package economy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbansim/citycore/internal/city"
)

func newTestEngine(seed int64) *Engine {
	return New(DefaultConfig(), rand.New(rand.NewSource(seed)))
}

func operationalBuilding(id string, zone city.ZoneType, capacity int, x float64) city.Building {
	return city.Building{
		ID:            id,
		Position:      city.Vector3{X: x},
		Zone:          zone,
		Wealth:        city.WealthMedium,
		Status:        city.StatusOperational,
		Capacity:      capacity,
		Level:         1,
		PropertyValue: 200_000,
		Quality:       0.5,
	}
}

func employedAgents(n int) []city.Agent {
	agents := make([]city.Agent, n)
	for i := range agents {
		agents[i] = city.Agent{Employed: true, Education: 0.5}
	}
	return agents
}

func TestEmptyWorldReportIsZeroed(t *testing.T) {
	e := newTestEngine(1)
	report := e.UpdateEconomy(1, nil, nil)

	assert.Zero(t, report.GDP)
	assert.Zero(t, report.UnemploymentPct, "an empty city has nobody to be unemployed")
	assert.Zero(t, report.TradeBalance, "trade supply and demand both floor at 1")
	assert.Zero(t, report.InflationPct)
	assert.Zero(t, report.GovernmentRevenue)
	assert.Zero(t, report.GovernmentExpense)
	assert.Empty(t, e.Businesses())
	assert.Equal(t, DefaultConfig().StartingFunds, e.Funds())
}

func TestProfitIdentity(t *testing.T) {
	e := newTestEngine(1)
	buildings := []city.Building{
		operationalBuilding("shop-1", city.ZoneCommercial, 12, 0),
		operationalBuilding("homes-1", city.ZoneResidential, 30, 20),
		operationalBuilding("homes-2", city.ZoneResidential, 30, -20),
		operationalBuilding("plant-1", city.ZoneIndustrial, 20, 80),
	}
	e.UpdateEconomy(1, buildings, employedAgents(50))

	businesses := e.Businesses()
	require.Len(t, businesses, 2, "commercial and industrial buildings each open one business")
	for _, biz := range businesses {
		assert.InDelta(t, biz.Revenue-biz.OperatingCosts, biz.Profit, 1e-9)
		assert.GreaterOrEqual(t, biz.Employees, 1)
		assert.LessOrEqual(t, biz.Employees, biz.MaxEmployees)
	}
}

func TestFootTrafficFavorsCloserHousing(t *testing.T) {
	shop := operationalBuilding("shop-1", city.ZoneCommercial, 10, 0)
	near := []city.Building{shop, operationalBuilding("homes-1", city.ZoneResidential, 30, 5)}
	far := []city.Building{shop, operationalBuilding("homes-1", city.ZoneResidential, 30, 15)}

	assert.Greater(t, footTraffic(shop, near), footTraffic(shop, far))

	// Past the catchment radius housing contributes nothing.
	beyond := []city.Building{shop, operationalBuilding("homes-1", city.ZoneResidential, 30, 150)}
	assert.Zero(t, footTraffic(shop, beyond))
}

func TestUpdateIsDeterministicAcrossEngines(t *testing.T) {
	buildings := []city.Building{
		operationalBuilding("shop-1", city.ZoneCommercial, 12, 0),
		operationalBuilding("homes-1", city.ZoneResidential, 40, 10),
		operationalBuilding("plant-1", city.ZoneIndustrial, 25, 60),
	}
	agents := employedAgents(80)

	a := newTestEngine(9)
	b := newTestEngine(9)

	var lastA, lastB Report
	for i := 0; i < 3; i++ {
		lastA = a.UpdateEconomy(1, buildings, agents)
		lastB = b.UpdateEconomy(1, buildings, agents)
	}
	// Aggregates sum over maps, so allow for reassociation noise.
	assert.InDelta(t, lastA.GDP, lastB.GDP, 1e-6)
	assert.InDelta(t, lastA.UnemploymentPct, lastB.UnemploymentPct, 1e-9)
	assert.InDelta(t, lastA.InflationPct, lastB.InflationPct, 1e-9)
	assert.InDelta(t, lastA.TradeBalance, lastB.TradeBalance, 1e-6)
	assert.InDelta(t, lastA.GovernmentRevenue, lastB.GovernmentRevenue, 1e-6)
	assert.InDelta(t, lastA.GovernmentExpense, lastB.GovernmentExpense, 1e-6)
	assert.Equal(t, lastA.CityRating, lastB.CityRating)
	assert.InDelta(t, a.Funds(), b.Funds(), 1e-6)
}

func TestSustainedLossesCloseBusinesses(t *testing.T) {
	e := newTestEngine(1)
	// A lone shop with no residents anywhere: minimum demand, no foot
	// traffic, wages and rent still due.
	buildings := []city.Building{operationalBuilding("shop-1", city.ZoneCommercial, 10, 0)}

	report := e.UpdateEconomy(50, buildings, nil)
	assert.Empty(t, e.Businesses(), "a business 50 days in the red is closed")
	assert.Zero(t, report.UnemploymentPct)
}

func TestBusinessesCloseWhenBuildingRemoved(t *testing.T) {
	e := newTestEngine(1)
	buildings := []city.Building{operationalBuilding("shop-1", city.ZoneCommercial, 10, 0)}
	e.UpdateEconomy(1, buildings, employedAgents(40))
	require.Len(t, e.Businesses(), 1)

	e.UpdateEconomy(1, nil, nil)
	assert.Empty(t, e.Businesses())
}

func TestTradePricesStayWithinClamp(t *testing.T) {
	e := newTestEngine(1)

	// Massive industrial oversupply with no residents: exporter prices
	// bottom out at half base.
	glut := []city.Building{operationalBuilding("plant-1", city.ZoneIndustrial, 500, 0)}
	e.UpdateEconomy(1, glut, nil)
	market := e.MarketAnalysisSnapshot()
	require.Contains(t, market.Goods, "food")
	assert.InDelta(t, market.Goods["food"].BasePrice*0.5, market.Goods["food"].CurrentPrice, 1e-9)

	// Large population with no producers: scarcity prices approach twice base.
	scarce := newTestEngine(1)
	scarce.UpdateEconomy(1, nil, employedAgents(500))
	market = scarce.MarketAnalysisSnapshot()
	for _, g := range market.Goods {
		assert.GreaterOrEqual(t, g.CurrentPrice, g.BasePrice*0.5)
		assert.LessOrEqual(t, g.CurrentPrice, g.BasePrice*2.0)
	}
	assert.InDelta(t, market.Goods["food"].BasePrice*(2-1.0/500), market.Goods["food"].CurrentPrice, 1e-9)
}

func TestCreditRatingReflectsTreasury(t *testing.T) {
	e := newTestEngine(1)
	report := e.UpdateEconomy(0, nil, nil)
	// Starting funds are a quarter of target with no businesses and no
	// debt: score lands in the BB band.
	assert.Equal(t, "BB", report.CityRating)
}

func TestDemandBucketsScaleWithWealth(t *testing.T) {
	e := newTestEngine(1)
	e.UpdateEconomy(1, nil, employedAgents(100))
	market := e.MarketAnalysisSnapshot()

	res := market.Demand[city.ZoneResidential]
	assert.Greater(t, res[city.WealthHigh], res[city.WealthMedium])
	assert.Greater(t, res[city.WealthMedium], res[city.WealthLow])
}

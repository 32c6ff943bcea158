package economy

import (
	"math"

	"github.com/urbansim/citycore/internal/city"
)

// TradeGood is a tradable commodity whose price floats on supply/demand.
// The catalog is fixed at engine creation; entries are mutated continuously.
type TradeGood struct {
	ID           string  `json:"id"`
	BasePrice    float64 `json:"base_price"`
	CurrentPrice float64 `json:"current_price"`
	Supply       float64 `json:"supply"`
	Demand       float64 `json:"demand"`
	Quality      float64 `json:"quality"`
}

// goodProfile drives how city state feeds a good's supply and demand.
type goodProfile struct {
	basePrice    float64
	demandPerCap float64 // demand per resident
	supplyZone   city.ZoneType
	supplyPerCap float64 // supply per unit of producing-zone capacity
}

var goodCatalog = map[string]goodProfile{
	"food":        {basePrice: 4, demandPerCap: 1.0, supplyZone: city.ZoneIndustrial, supplyPerCap: 2.0},
	"materials":   {basePrice: 12, demandPerCap: 0.2, supplyZone: city.ZoneIndustrial, supplyPerCap: 1.5},
	"consumer":    {basePrice: 8, demandPerCap: 0.5, supplyZone: city.ZoneCommercial, supplyPerCap: 1.2},
	"electronics": {basePrice: 30, demandPerCap: 0.1, supplyZone: city.ZoneOffice, supplyPerCap: 0.6},
	"fuel":        {basePrice: 15, demandPerCap: 0.3, supplyZone: city.ZoneIndustrial, supplyPerCap: 1.0},
}

func newGoods() map[string]*TradeGood {
	goods := make(map[string]*TradeGood, len(goodCatalog))
	for id, p := range goodCatalog {
		goods[id] = &TradeGood{
			ID:           id,
			BasePrice:    p.basePrice,
			CurrentPrice: p.basePrice,
			Supply:       1,
			Demand:       1,
			Quality:      0.7,
		}
	}
	return goods
}

// updateTradeGoods refreshes each good's supply and demand from city state
// and reprices it. Price = base × clamp(2 − supply/demand, 0.5, 2.0).
func (e *Engine) updateTradeGoods(population int, zoneCapacity map[city.ZoneType]float64) {
	for id, g := range e.goods {
		p := goodCatalog[id]
		g.Demand = math.Max(1, float64(population)*p.demandPerCap)
		g.Supply = math.Max(1, zoneCapacity[p.supplyZone]*p.supplyPerCap)
		g.CurrentPrice = g.BasePrice * city.Clamp(2-g.Supply/g.Demand, 0.5, 2.0)
	}
}

// tradeBalance sums (supply − demand) × price over the catalog: positive
// when the city exports more than it imports.
func (e *Engine) tradeBalance() float64 {
	total := 0.0
	for _, g := range e.goods {
		total += (g.Supply - g.Demand) * g.CurrentPrice
	}
	return total
}

// Command citysim runs the city simulation core standalone: it seeds a
// small demo city, drives the clock from a host loop, and logs periodic
// reports. Rendering, UI, and sync layers replace this harness in the
// full game.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"github.com/urbansim/citycore/internal/city"
	"github.com/urbansim/citycore/internal/config"
	"github.com/urbansim/citycore/internal/sim"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// .env is optional; env vars override defaults either way.
	_ = godotenv.Load()
	cfg := config.FromEnv(config.Default())

	simulation, err := sim.New(cfg)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}
	slog.Info("city simulation ready",
		"seed", cfg.Seed,
		"world_size", cfg.WorldSize,
		"cell_size", cfg.CellSize,
	)

	seedDemoCity(simulation)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	clock := simulation.Clock()
	clock.Start(time.Now())
	clock.SetSpeed(sim.SpeedUltra)

	fmt.Println("City simulation running... (Ctrl+C to stop)")

	frame := time.NewTicker(50 * time.Millisecond)
	defer frame.Stop()
	report := time.NewTicker(10 * time.Second)
	defer report.Stop()

	for {
		select {
		case now := <-frame.C:
			simulation.Tick(now)
		case <-report.C:
			logReports(simulation)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			clock.Stop()
			logReports(simulation)
			fmt.Println("Simulation stopped.")
			return
		}
	}
}

// seedDemoCity pushes a starter city through the public entry points:
// a road grid, housing, a commercial strip, and one factory under
// construction.
func seedDemoCity(s *sim.Simulation) {
	for i := -2; i <= 2; i++ {
		offset := float64(i) * 40
		s.AddRoad([]city.Vector3{{X: -100, Z: offset}, {X: 100, Z: offset}})
		s.AddRoad([]city.Vector3{{X: offset, Z: -100}, {X: offset, Z: 100}})
	}

	for i := 0; i < 6; i++ {
		s.AddBuilding(city.Building{
			ID:            fmt.Sprintf("res-%d", i),
			Position:      city.Vector3{X: float64(i%3)*40 - 40, Z: float64(i/3)*40 - 20},
			Zone:          city.ZoneResidential,
			Wealth:        city.WealthMedium,
			Status:        city.StatusOperational,
			Capacity:      10,
			Level:         1,
			PropertyValue: 120_000,
		})
	}
	s.AddBuilding(city.Building{
		ID:            "shop-1",
		Position:      city.Vector3{X: 20, Z: 20},
		Zone:          city.ZoneCommercial,
		Wealth:        city.WealthMedium,
		Status:        city.StatusOperational,
		Capacity:      8,
		Level:         1,
		PropertyValue: 200_000,
	})
	s.AddBuilding(city.Building{
		ID:            "factory-1",
		Position:      city.Vector3{X: -60, Z: 60},
		Zone:          city.ZoneIndustrial,
		Wealth:        city.WealthLow,
		Status:        city.StatusPlanned,
		Capacity:      20,
		Level:         2,
		PropertyValue: 350_000,
	})

	agents := make([]city.Agent, 0, 60)
	for i := 0; i < 60; i++ {
		agents = append(agents, city.Agent{
			Position:  city.Vector3{X: float64(i%10)*8 - 40, Z: float64(i/10)*8 - 20},
			HomeID:    fmt.Sprintf("res-%d", i%6),
			Employed:  i%4 != 0,
			Education: 0.3 + float64(i%5)*0.15,
		})
	}
	s.SetAgents(agents)

	// Entry points queue until the first tick; run one so the factory
	// build can start against applied state.
	s.Tick(time.Now())

	projectID, err := s.StartConstruction("factory-1", city.Blueprint{
		Name:             "assembly plant",
		Footprint:        city.Vector3{X: 30, Y: 12, Z: 20},
		BaseCost:         180_000,
		ConstructionDays: 45,
	})
	if err != nil {
		slog.Error("failed to start construction", "error", err)
		return
	}
	slog.Info("demo city seeded", "construction_project", projectID)
}

// logReports prints the three core snapshots.
func logReports(s *sim.Simulation) {
	econ := s.EconomicReport()
	constr := s.ConstructionReport()
	analysis := s.TerrainAnalysis(city.Vector3{}, 100)

	slog.Info("economic report",
		"gdp", humanize.Commaf(econ.GDP),
		"unemployment_pct", fmt.Sprintf("%.1f", econ.UnemploymentPct),
		"inflation_pct", fmt.Sprintf("%.2f", econ.InflationPct),
		"trade_balance", humanize.Commaf(econ.TradeBalance),
		"rating", econ.CityRating,
	)
	slog.Info("construction report",
		"active", constr.ActiveProjects,
		"completed", constr.CompletedProjects,
		"delayed", constr.DelayedProjects,
		"investment", humanize.Commaf(constr.TotalInvestment),
		"worker_utilization", fmt.Sprintf("%.2f", constr.WorkerUtilization),
	)
	slog.Info("terrain analysis",
		"avg_value", fmt.Sprintf("%.3f", analysis.AverageValue),
		"environmental_health", fmt.Sprintf("%.3f", analysis.EnvironmentalHealth),
		"pollution", fmt.Sprintf("%.4f", analysis.Pollution),
		"water_coverage", fmt.Sprintf("%.3f", analysis.WaterCoverage),
	)
}

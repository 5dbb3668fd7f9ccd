package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/tileflow/engine/config"
	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/maplib"
	"github.com/1siamBot/tileflow/engine/pathfind"
)

func requestsFinished(t *testing.T) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != "tileflow_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func benchConfig() config.Config {
	cfg := config.Default()
	cfg.Map.Width, cfg.Map.Height = 40, 40
	cfg.Map.CellPixels = 2
	cfg.Pathfinding.TileSize = 10
	return cfg
}

func TestSolveRecordsEachTripOnce(t *testing.T) {
	cfg := benchConfig()
	cost := grid.New(maplib.CostOpen, 40, 40)
	tr := trip{from: grid.Cell{X: 1, Y: 1}, to: grid.Cell{X: 35, Y: 30}}
	path := filepath.Join(t.TempDir(), "trip.png")

	before := requestsFinished(t)
	res, err := solve(context.Background(), cfg, cost, tr, path)
	require.NoError(t, err)

	assert.Equal(t, pathfind.StitchComposed, res.phase)
	assert.Positive(t, res.steps)
	assert.Positive(t, res.zones)
	assert.Equal(t, path, res.snapshot)
	assert.Equal(t, 1.0, requestsFinished(t)-before)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSolveStopsOnCancel(t *testing.T) {
	cfg := benchConfig()
	cfg.Driver.StepsPerTick = 1
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := solve(ctx, cfg, grid.New(maplib.CostOpen, 40, 40),
		trip{from: grid.Cell{X: 0, Y: 0}, to: grid.Cell{X: 39, Y: 39}}, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRandomTripsAvoidWalls(t *testing.T) {
	cost := maplib.Demo(32, 32, 3, 0.05)
	trips := randomTrips(cost, 50, rand.New(rand.NewSource(3)))
	require.Len(t, trips, 50)
	for _, tr := range trips {
		assert.NotEqual(t, maplib.CostWall, cost.Get(tr.from))
		assert.NotEqual(t, maplib.CostWall, cost.Get(tr.to))
	}
	assert.Empty(t, randomTrips(cost, 0, rand.New(rand.NewSource(3))))
}

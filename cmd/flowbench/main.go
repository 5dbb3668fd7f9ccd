package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/1siamBot/tileflow/engine/config"
	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/maplib"
	"github.com/1siamBot/tileflow/engine/pathfind"
	"github.com/1siamBot/tileflow/engine/render"
)

const ConfigPath = "config/tileflow.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

type trip struct {
	from, to grid.Cell
}

type outcome struct {
	phase    pathfind.StitchPhase
	steps    int
	zones    int
	elapsed  time.Duration
	snapshot string
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("TILEFLOW_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))
	slog.Info("tileflow bench starting",
		"map", fmt.Sprintf("%dx%d", cfg.Map.Width, cfg.Map.Height),
		"requests", cfg.Bench.Requests,
		"parallelism", cfg.Bench.Parallelism,
		"tile_size", cfg.Pathfinding.TileSize)

	if cfg.Bench.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.Bench.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server", "err", err)
			}
		}()
		defer srv.Close()
		slog.Info("metrics listening", "addr", cfg.Bench.MetricsAddr)
	}
	if cfg.Bench.SnapshotDir != "" {
		if err := os.MkdirAll(cfg.Bench.SnapshotDir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot dir: %w", err)
		}
	}

	cost := maplib.Demo(cfg.Map.Width, cfg.Map.Height, cfg.Demo.Seed, cfg.Demo.Density)
	trips := randomTrips(cost, cfg.Bench.Requests, rand.New(rand.NewSource(cfg.Demo.Seed)))
	results := make([]outcome, len(trips))

	began := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Bench.Parallelism)
	for i, tr := range trips {
		i, tr := i, tr
		g.Go(func() error {
			snapshot := ""
			if cfg.Bench.SnapshotDir != "" {
				snapshot = filepath.Join(cfg.Bench.SnapshotDir, fmt.Sprintf("trip-%03d.png", i))
			}
			res, err := solve(gctx, cfg, cost, tr, snapshot)
			if err != nil {
				return fmt.Errorf("trip %d %v->%v: %w", i, tr.from, tr.to, err)
			}
			results[i] = res
			slog.Debug("trip finished", "trip", i, "from", tr.from, "to", tr.to,
				"phase", res.phase, "steps", res.steps, "zones", res.zones, "elapsed", res.elapsed, "snapshot", res.snapshot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	composed, steps := 0, 0
	for _, r := range results {
		if r.phase == pathfind.StitchComposed {
			composed++
		}
		steps += r.steps
	}
	slog.Info("bench finished",
		"trips", len(results),
		"composed", composed,
		"unreachable", len(results)-composed,
		"steps", steps,
		"elapsed", time.Since(began))
	return nil
}

// randomTrips picks n endpoint pairs on non-wall cells
func randomTrips(cost *grid.Grid[uint8], n int, rng *rand.Rand) []trip {
	open := func() grid.Cell {
		for {
			c := grid.Cell{X: rng.Intn(cost.Width), Y: rng.Intn(cost.Height)}
			if cost.Get(c) < maplib.CostWall {
				return c
			}
		}
	}
	trips := make([]trip, n)
	for i := range trips {
		trips[i] = trip{from: open(), to: open()}
	}
	return trips
}

// solve drives one hierarchical request in StepsPerTick slices, checking
// for cancellation between slices. A non-empty snapshot path gets a PNG of
// the finished request.
func solve(ctx context.Context, cfg config.Config, cost *grid.Grid[uint8], tr trip, snapshot string) (outcome, error) {
	began := time.Now()
	comp := pathfind.NewComputer(cfg.PathfindOptions(), nil)
	id, err := comp.BeginHierarchical(tr.from, tr.to, cost)
	if err != nil {
		return outcome{}, err
	}
	for comp.Tick(cfg.Driver.StepsPerTick) > 0 {
		if err := ctx.Err(); err != nil {
			comp.Clear()
			return outcome{}, err
		}
	}
	r, _ := comp.Request(id)
	h := r.Hierarchical
	res := outcome{
		phase:    h.Phase(),
		steps:    r.Steps(),
		zones:    h.Table().Len(),
		elapsed:  time.Since(began),
		snapshot: snapshot,
	}
	if snapshot != "" {
		if err := render.SaveSnapshot(snapshot, render.MapImage(cost, comp), cfg.Map.CellPixels); err != nil {
			return outcome{}, fmt.Errorf("saving snapshot: %w", err)
		}
	}
	return res, nil
}

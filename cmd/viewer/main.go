package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/1siamBot/tileflow/editor"
	"github.com/1siamBot/tileflow/engine/config"
	"github.com/1siamBot/tileflow/engine/core"
	"github.com/1siamBot/tileflow/engine/grid"
	"github.com/1siamBot/tileflow/engine/input"
	"github.com/1siamBot/tileflow/engine/pathfind"
	"github.com/1siamBot/tileflow/engine/render"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720

	ConfigPath = "config/tileflow.yaml"
	MapPath    = "map.json"

	// spawnSpread is how many cells around the cursor a crowd spreads over
	spawnSpread = 10
	// pathSpeed is how far, in cells per frame, agents move along a flat path
	pathSpeed = 0.25
	// brushStep is the cost change per bracket key press
	brushStep = 10
)

// CursorMode selects what mouse buttons do on the map
type CursorMode int

const (
	ModeCostDrawing CursorMode = iota
	ModeTripSetting
)

func (m CursorMode) String() string {
	if m == ModeTripSetting {
		return "trip"
	}
	return "cost"
}

type ViewerApp struct {
	cfg      config.Config
	editor   *editor.Editor
	computer *pathfind.Computer
	events   *core.EventBus
	loop     *core.Loop
	camera   *render.Camera
	overlay  *render.Overlay
	input    *input.InputState
	rng      *rand.Rand

	mode     CursorMode
	hover    grid.Cell
	start    grid.Cell
	agents   []*pathfind.Agent
	route    []grid.Cell // waypoints of the latest finished flat search
	lastTick time.Duration
}

func NewViewerApp(cfg config.Config) *ViewerApp {
	events := core.NewEventBus()
	computer := pathfind.NewComputer(cfg.PathfindOptions(), events)
	cell := float64(cfg.Map.CellPixels)
	cam := render.NewCamera(ScreenWidth, ScreenHeight, cell)
	cam.SetMapBounds(cfg.Map.Width, cfg.Map.Height)
	cam.CenterOn(grid.Cell{X: cfg.Map.Width / 2, Y: cfg.Map.Height / 2})

	a := &ViewerApp{
		cfg:      cfg,
		editor:   editor.NewEditor(cfg.Map.Width, cfg.Map.Height),
		computer: computer,
		events:   events,
		loop:     core.NewLoop(computer, cfg.Driver.TickRate, cfg.Driver.StepsPerTick),
		camera:   cam,
		overlay:  render.NewOverlay(cam, cfg.Map.Width, cfg.Map.Height),
		input:    input.NewInputState(),
		rng:      rand.New(rand.NewSource(cfg.Demo.Seed)),
	}
	a.subscribe()
	a.loop.Play()
	return a
}

func (a *ViewerApp) subscribe() {
	a.events.On(core.EvtFieldComposed, func(e core.Event) {
		r := e.Payload.(*pathfind.Request)
		slog.Info("field composed", "id", e.RequestID, "tick", e.Tick,
			"zones", r.Hierarchical.Table().Len(), "steps", r.Steps())
	})
	a.events.On(core.EvtFieldUnreachable, func(e core.Event) {
		slog.Info("target unreachable", "id", e.RequestID, "tick", e.Tick)
	})
	a.events.On(core.EvtSearchDone, func(e core.Event) {
		r := e.Payload.(*pathfind.Request)
		a.route = pathfind.SmoothPath(r.Search.CostGrid(), r.Search.Path())
		for _, ag := range a.agents {
			ag.ResetPath()
		}
		slog.Info("search done", "id", e.RequestID, "cost", r.Search.TotalCost(),
			"expanded", r.Search.Expanded(), "waypoints", len(a.route))
	})
	a.events.On(core.EvtSearchUnreachable, func(e core.Event) {
		slog.Info("search unreachable", "id", e.RequestID)
	})
	a.events.On(core.EvtRequestCancelled, func(e core.Event) {
		slog.Debug("request cancelled", "id", e.RequestID)
	})
	a.events.On(core.EvtMapEdited, func(e core.Event) {
		slog.Debug("map edited", "cells", e.Payload, "version", a.editor.Map.Version())
	})
}

func (a *ViewerApp) Update() error {
	a.input.Update()
	a.updateCamera()
	a.hover = a.camera.ScreenToCell(a.input.MouseX, a.input.MouseY)

	a.handleKeys()
	if a.editor.Map.InBounds(a.hover) {
		a.handleMouse()
	}

	began := time.Now()
	a.loop.Update()
	a.lastTick = time.Since(began)
	a.events.Dispatch()

	if res := a.computer.Composed(); res != nil {
		for _, ag := range a.agents {
			ag.Advance(ag.Follow(res))
		}
	} else if a.route != nil {
		for _, ag := range a.agents {
			ag.SteerPath(a.route, pathSpeed)
		}
	}
	return nil
}

func (a *ViewerApp) updateCamera() {
	dx, dy := a.input.PanKeys()
	speed := a.camera.Speed / 60.0
	a.camera.Pan(dx*speed, dy*speed)
	if a.input.ScrollY != 0 {
		a.camera.ZoomAt(1+a.input.ScrollY/10, a.input.MouseX, a.input.MouseY)
	}
}

func (a *ViewerApp) handleKeys() {
	in := a.input
	switch {
	case in.Triggered(input.ActionTogglePause):
		a.loop.Toggle()
	case in.Triggered(input.ActionStep):
		a.loop.Tick()
	case in.Triggered(input.ActionRunAll):
		began := time.Now()
		steps := a.computer.RunAll()
		slog.Info("ran all requests", "steps", steps, "elapsed", time.Since(began))
	case in.Triggered(input.ActionToggleMode):
		a.mode = 1 - a.mode
	case in.Triggered(input.ActionClearAgents):
		a.agents = nil
	case in.Triggered(input.ActionClearRequests):
		a.computer.Clear()
		a.route = nil
	case in.Triggered(input.ActionDemoMap):
		a.edited(a.editor.Demo(a.cfg.Demo.Seed, a.cfg.Demo.Density))
	case in.Triggered(input.ActionResetMap):
		a.edited(a.editor.Clear())
	case in.Triggered(input.ActionUndo):
		a.edited(a.editor.Undo())
	case in.Triggered(input.ActionRedo):
		a.edited(a.editor.Redo())
	case in.Triggered(input.ActionNextTool):
		a.editor.NextTool()
	case in.Triggered(input.ActionNextTerrain):
		a.editor.NextTerrain()
	case in.Triggered(input.ActionBrushDown):
		a.editor.AdjustBrushCost(-brushStep)
	case in.Triggered(input.ActionBrushUp):
		a.editor.AdjustBrushCost(brushStep)
	case in.Triggered(input.ActionSave):
		if err := a.editor.SaveMap(MapPath); err != nil {
			slog.Error("saving map", "err", err)
		} else {
			slog.Info("map saved", "path", a.editor.FilePath)
		}
	case in.Triggered(input.ActionSnapshot):
		path := fmt.Sprintf("tileflow-%d.png", time.Now().Unix())
		img := render.MapImage(a.editor.Map.Grid(), a.computer)
		if err := render.SaveSnapshot(path, img, a.cfg.Map.CellPixels); err != nil {
			slog.Error("saving snapshot", "err", err)
		} else {
			slog.Info("snapshot saved", "path", path)
		}
	case in.Triggered(input.ActionSpawnAgents):
		a.spawn()
	case in.Triggered(input.ActionFlatSearch):
		if a.editor.Map.InBounds(a.hover) {
			a.begin(a.computer.BeginSearch)
		}
	}
}

func (a *ViewerApp) handleMouse() {
	in := a.input
	switch a.mode {
	case ModeCostDrawing:
		if in.LeftPressed {
			a.edited(a.editor.Paint(a.hover))
		}
		if in.RightPressed {
			tool := a.editor.Tool
			a.editor.Tool = editor.ToolOpen
			a.edited(a.editor.Paint(a.hover))
			a.editor.Tool = tool
		}
		if in.MiddleJustPressed {
			a.edited(a.editor.Clear())
		}
	case ModeTripSetting:
		if in.LeftJustPressed {
			a.start = a.hover
		}
		if in.RightJustPressed {
			a.begin(a.computer.BeginHierarchical)
		}
		if in.MiddleJustPressed {
			a.computer.Clear()
			a.route = nil
		}
	}
}

func (a *ViewerApp) begin(start func(from, to grid.Cell, cost *grid.Grid[uint8]) (int, error)) {
	id, err := start(a.start, a.hover, a.editor.Map.Snapshot())
	if err != nil {
		slog.Error("starting request", "err", err)
		return
	}
	slog.Debug("request queued", "id", id, "from", a.start, "to", a.hover)
}

func (a *ViewerApp) edited(changed bool) {
	if !changed {
		return
	}
	n := 0
	if len(a.editor.UndoStack) > 0 {
		n = len(a.editor.UndoStack[len(a.editor.UndoStack)-1])
	}
	a.events.Emit(core.Event{Type: core.EvtMapEdited, Tick: a.loop.TickCount, Payload: n})
}

// spawn drops one agent on the hovered cell with Ctrl held, a crowd otherwise
func (a *ViewerApp) spawn() {
	params := a.cfg.AgentParams(a.camera.CellSize)
	cx := float64(a.hover.X) * params.CellSize
	cy := float64(a.hover.Y) * params.CellSize
	if a.input.Control {
		a.agents = append(a.agents, pathfind.NewAgent(cx, cy, params, a.rng))
		return
	}
	spread := spawnSpread * params.CellSize
	for i := 0; i < a.cfg.Agent.Count; i++ {
		x := cx + (a.rng.Float64()*2-1)*spread
		y := cy + (a.rng.Float64()*2-1)*spread
		a.agents = append(a.agents, pathfind.NewAgent(x, y, params, a.rng))
	}
}

func (a *ViewerApp) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{26, 51, 77, 255})

	a.overlay.Upload(render.MapImage(a.editor.Map.Grid(), a.computer))
	a.overlay.DrawMap(screen)
	a.overlay.DrawArrows(screen, a.computer.Composed())
	a.overlay.DrawMarker(screen, a.start, color.RGBA{255, 255, 51, 255})
	a.overlay.DrawAgents(screen, a.agents)
	if a.editor.Map.InBounds(a.hover) {
		a.overlay.DrawCursor(screen, a.hover)
	}

	state := "running"
	if a.loop.State == core.StatePaused {
		state = "paused"
	}
	cost := "-"
	if a.editor.Map.InBounds(a.hover) {
		cost = fmt.Sprintf("%d", a.editor.Map.Cost(a.hover))
	}
	info := fmt.Sprintf("Cell(%d,%d) cost:%s | mode:%s brush:%s | %s tick:%d (%v) | requests:%d pending:%d | agents:%d | FPS:%.0f",
		a.hover.X, a.hover.Y, cost, a.mode, a.editor.BrushLabel(), state, a.loop.TickCount, a.lastTick.Round(time.Microsecond),
		len(a.computer.Requests()), a.computer.Pending(), len(a.agents), ebiten.ActualFPS())
	ebitenutil.DebugPrintAt(screen, info, 5, 5)
	ebitenutil.DebugPrintAt(screen,
		"[Tab]Mode [T]Tool [V]Terrain [ [ ] ]Cost [P]Pause [N]Step [Enter]RunAll [F]Search [Space]Agents [Del]ClearAgents [Bksp]ClearRequests [G]Demo [R]Reset [Z/Y]Undo/Redo [F2]PNG [F5]Save",
		5, ScreenHeight-20)
}

func (a *ViewerApp) Layout(_, _ int) (int, int) {
	return ScreenWidth, ScreenHeight
}

func main() {
	cfgPath := ConfigPath
	if p := os.Getenv("TILEFLOW_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))
	slog.Info("tileflow viewer starting", "map", fmt.Sprintf("%dx%d", cfg.Map.Width, cfg.Map.Height),
		"tile_size", cfg.Pathfinding.TileSize, "log_level", cfg.LogLevel)

	app := NewViewerApp(cfg)
	if len(os.Args) > 1 {
		if err := app.editor.LoadMap(os.Args[1]); err != nil {
			slog.Error("loading map", "path", os.Args[1], "err", err)
		} else if app.editor.Map.Width() != cfg.Map.Width || app.editor.Map.Height() != cfg.Map.Height {
			slog.Error("map size differs from config", "path", os.Args[1])
			os.Exit(1)
		}
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("tileflow")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(app); err != nil {
		slog.Error("viewer stopped", "err", err)
		os.Exit(1)
	}
}

package core

import "time"

// Ticker is advanced by the loop with a budget of steps per tick. Tick
// returns the number of steps actually taken; 0 means nothing is pending.
type Ticker interface {
	Tick(steps int) int
}

// LoopState represents whether the loop advances its target
type LoopState uint8

const (
	StatePaused LoopState = iota
	StateRunning
)

// Loop runs a Ticker at a fixed tick rate, independent of the render rate
type Loop struct {
	Target       Ticker
	State        LoopState
	TickRate     float64 // fixed ticks per second
	StepsPerTick int     // step budget handed to the target each tick
	TickCount    uint64

	accumulator float64
	lastTime    time.Time
	now         func() time.Time
}

// NewLoop creates a paused loop with a fixed tick rate
func NewLoop(target Ticker, tickRate float64, stepsPerTick int) *Loop {
	return &Loop{
		Target:       target,
		TickRate:     tickRate,
		StepsPerTick: stepsPerTick,
		lastTime:     time.Now(),
		now:          time.Now,
	}
}

// Update should be called every render frame. It runs as many fixed ticks
// as elapsed time allows and returns the interpolation alpha for rendering.
func (l *Loop) Update() float64 {
	now := l.now()
	frameTime := now.Sub(l.lastTime).Seconds()
	l.lastTime = now

	// Cap frame time to avoid spiral of death
	if frameTime > 0.25 {
		frameTime = 0.25
	}

	dt := 1.0 / l.TickRate
	l.accumulator += frameTime

	for l.accumulator >= dt {
		if l.State == StateRunning {
			l.Tick()
		}
		l.accumulator -= dt
	}

	return l.accumulator / dt
}

// Tick hands one step budget to the target regardless of state
func (l *Loop) Tick() int {
	l.TickCount++
	return l.Target.Tick(l.StepsPerTick)
}

// RunToCompletion ticks until the target reports no pending work and
// returns the total number of steps taken
func (l *Loop) RunToCompletion() int {
	total := 0
	for {
		n := l.Tick()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Play starts or resumes ticking
func (l *Loop) Play() {
	l.State = StateRunning
	l.lastTime = l.now()
}

// Pause stops ticking; Tick can still be called by hand
func (l *Loop) Pause() {
	l.State = StatePaused
}

// Toggle switches between running and paused
func (l *Loop) Toggle() {
	if l.State == StateRunning {
		l.Pause()
	} else {
		l.Play()
	}
}

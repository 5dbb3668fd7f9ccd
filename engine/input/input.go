package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Action is a viewer command bound to a key
type Action int

const (
	ActionTogglePause Action = iota
	ActionStep
	ActionRunAll
	ActionSpawnAgents
	ActionClearAgents
	ActionClearRequests
	ActionToggleMode
	ActionFlatSearch
	ActionDemoMap
	ActionResetMap
	ActionUndo
	ActionRedo
	ActionNextTool
	ActionNextTerrain
	ActionBrushDown
	ActionBrushUp
	ActionSnapshot
	ActionSave
)

// DefaultBindings maps each action to its key
func DefaultBindings() map[Action]ebiten.Key {
	return map[Action]ebiten.Key{
		ActionTogglePause:   ebiten.KeyP,
		ActionStep:          ebiten.KeyN,
		ActionRunAll:        ebiten.KeyEnter,
		ActionSpawnAgents:   ebiten.KeySpace,
		ActionClearAgents:   ebiten.KeyDelete,
		ActionClearRequests: ebiten.KeyBackspace,
		ActionToggleMode:    ebiten.KeyTab,
		ActionFlatSearch:    ebiten.KeyF,
		ActionDemoMap:       ebiten.KeyG,
		ActionResetMap:      ebiten.KeyR,
		ActionUndo:          ebiten.KeyZ,
		ActionRedo:          ebiten.KeyY,
		ActionNextTool:      ebiten.KeyT,
		ActionNextTerrain:   ebiten.KeyV,
		ActionBrushDown:     ebiten.KeyBracketLeft,
		ActionBrushUp:       ebiten.KeyBracketRight,
		ActionSnapshot:      ebiten.KeyF2,
		ActionSave:          ebiten.KeyF5,
	}
}

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	// Mouse
	MouseX, MouseY     int
	MouseDX, MouseDY   int // delta since last frame
	prevMouseX         int
	prevMouseY         int
	LeftPressed        bool
	RightPressed       bool
	MiddlePressed      bool
	LeftJustPressed    bool
	RightJustPressed   bool
	MiddleJustPressed  bool
	ScrollY            float64

	// Keyboard
	Bindings  map[Action]ebiten.Key
	Control   bool
	triggered map[Action]bool
}

func NewInputState() *InputState {
	return &InputState{
		Bindings:  DefaultBindings(),
		triggered: make(map[Action]bool),
	}
}

// Update should be called every frame
func (s *InputState) Update() {
	// Mouse position
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	// Mouse buttons
	s.LeftPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	s.RightPressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	s.MiddlePressed = ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	s.LeftJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	s.RightJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	s.MiddleJustPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle)

	// Scroll
	_, s.ScrollY = ebiten.Wheel()

	s.Control = ebiten.IsKeyPressed(ebiten.KeyControl)
	for a, k := range s.Bindings {
		s.triggered[a] = inpututil.IsKeyJustPressed(k)
	}
}

// Triggered reports whether the key bound to a was pressed this frame
func (s *InputState) Triggered(a Action) bool {
	return s.triggered[a]
}

// PanKeys returns the arrow/WASD pan direction held this frame
func (s *InputState) PanKeys() (dx, dy float64) {
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		dx--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		dx++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		dy--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		dy++
	}
	return dx, dy
}

package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/tileflow/engine/core"
	"github.com/1siamBot/tileflow/engine/grid"
)

func recordEvents(bus *core.EventBus) *[]core.Event {
	var got []core.Event
	for _, t := range []core.EventType{
		core.EvtSearchDone,
		core.EvtSearchUnreachable,
		core.EvtFieldComposed,
		core.EvtFieldUnreachable,
		core.EvtRequestCancelled,
	} {
		bus.On(t, func(e core.Event) { got = append(got, e) })
	}
	return &got
}

func TestComputerRunsRequests(t *testing.T) {
	bus := core.NewEventBus()
	events := recordEvents(bus)
	c := NewComputer(tileOptions(10), bus)

	cost := openGrid(30, 30)
	searchID, err := c.BeginSearch(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 29, Y: 29}, cost)
	require.NoError(t, err)
	fieldID, err := c.BeginHierarchical(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 29, Y: 29}, cost)
	require.NoError(t, err)
	assert.NotEqual(t, searchID, fieldID)
	assert.Equal(t, 2, c.Pending())
	assert.Len(t, c.Searches(), 2)

	assert.Equal(t, 2, c.Tick(1))
	assert.Nil(t, c.Composed())

	c.RunAll()
	assert.Equal(t, 0, c.Pending())
	require.NotNil(t, c.Composed())
	assert.Len(t, c.Searches(), 1)

	bus.Dispatch()
	require.Len(t, *events, 2)
	byType := map[core.EventType]core.Event{}
	for _, e := range *events {
		byType[e.Type] = e
	}
	assert.Equal(t, searchID, byType[core.EvtSearchDone].RequestID)
	assert.Equal(t, fieldID, byType[core.EvtFieldComposed].RequestID)

	r, ok := c.Request(fieldID)
	require.True(t, ok)
	assert.Same(t, r, byType[core.EvtFieldComposed].Payload)
	assert.Equal(t, r.Hierarchical.Steps(), r.Steps())

	// Finished requests are reported once
	assert.Equal(t, 0, c.Tick(10))
	bus.Dispatch()
	assert.Len(t, *events, 2)
}

func TestComputerUnreachable(t *testing.T) {
	bus := core.NewEventBus()
	events := recordEvents(bus)
	c := NewComputer(tileOptions(10), bus)

	cost := openGrid(20, 20)
	wallColumn(cost, 10)
	_, err := c.BeginSearch(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 19, Y: 0}, cost)
	require.NoError(t, err)
	_, err = c.BeginHierarchical(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 19, Y: 0}, cost)
	require.NoError(t, err)
	c.RunAll()
	bus.Dispatch()

	require.Len(t, *events, 2)
	assert.Equal(t, core.EvtSearchUnreachable, (*events)[0].Type)
	assert.Equal(t, core.EvtFieldUnreachable, (*events)[1].Type)
	assert.Nil(t, c.Composed())
}

func TestComputerCancel(t *testing.T) {
	bus := core.NewEventBus()
	events := recordEvents(bus)
	c := NewComputer(tileOptions(10), bus)

	cost := openGrid(30, 30)
	id, err := c.BeginHierarchical(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 29, Y: 29}, cost)
	require.NoError(t, err)
	c.Tick(5)

	assert.True(t, c.Cancel(id))
	assert.False(t, c.Cancel(id))
	_, ok := c.Request(id)
	assert.False(t, ok)

	bus.Dispatch()
	require.Len(t, *events, 1)
	assert.Equal(t, core.EvtRequestCancelled, (*events)[0].Type)
	assert.Equal(t, id, (*events)[0].RequestID)

	_, err = c.BeginSearch(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1}, cost)
	require.NoError(t, err)
	c.RunAll()
	c.Clear()
	assert.Empty(t, c.Requests())
	bus.Dispatch()
	assert.Len(t, *events, 2, "finished requests are not reported as cancelled")
}

func TestComputerRejectsBadRequests(t *testing.T) {
	c := NewComputer(tileOptions(10), nil)
	cost := openGrid(5, 5)
	_, err := c.BeginSearch(grid.Cell{X: 5, Y: 0}, grid.Cell{}, cost)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = c.BeginHierarchical(grid.Cell{}, grid.Cell{X: 0, Y: -1}, cost)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.Empty(t, c.Requests())

	// A nil bus is allowed
	_, err = c.BeginSearch(grid.Cell{}, grid.Cell{X: 4, Y: 4}, cost)
	require.NoError(t, err)
	assert.Positive(t, c.RunAll())
}

func TestComputerIsTicker(t *testing.T) {
	c := NewComputer(tileOptions(10), nil)
	_, err := c.BeginSearch(grid.Cell{}, grid.Cell{X: 9, Y: 9}, openGrid(10, 10))
	require.NoError(t, err)

	loop := core.NewLoop(c, 60, 4)
	loop.RunToCompletion()
	assert.Equal(t, 0, c.Pending())
}

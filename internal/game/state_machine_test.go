package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/errors"
	"go.uber.org/zap"
)

func TestStateMachineTurnCycle(t *testing.T) {
	ctx := context.Background()
	sm := NewStateMachine("test-session", zap.NewNop())
	assert.Equal(t, PhaseStart, sm.Phase())

	var changes [][2]Phase
	sm.OnPhaseChange(func(from, to Phase) {
		changes = append(changes, [2]Phase{from, to})
	})

	for _, event := range []string{EventBeginAction, EventResolveAction, EventMaintain, EventNextTurn} {
		require.NoError(t, sm.Trigger(ctx, event), event)
	}
	assert.Equal(t, PhaseStart, sm.Phase())
	assert.Equal(t, [][2]Phase{
		{PhaseStart, PhaseAction},
		{PhaseAction, PhaseRandomEvent},
		{PhaseRandomEvent, PhaseMaintenance},
		{PhaseMaintenance, PhaseStart},
	}, changes)
}

func TestStateMachineQuitSkipsRandomEvent(t *testing.T) {
	ctx := context.Background()
	sm := NewStateMachine("test-session", zap.NewNop())
	require.NoError(t, sm.Trigger(ctx, EventBeginAction))
	require.NoError(t, sm.Trigger(ctx, EventQuit))
	assert.Equal(t, PhaseMaintenance, sm.Phase())
	require.NoError(t, sm.Trigger(ctx, EventEnd))
	assert.True(t, sm.Terminal())
}

func TestStateMachineTerminalHasNoExit(t *testing.T) {
	ctx := context.Background()
	sm := NewStateMachine("test-session", zap.NewNop())
	require.NoError(t, sm.Trigger(ctx, EventEnd))
	assert.Empty(t, sm.ValidEvents())

	for _, event := range []string{EventBeginAction, EventResolveAction, EventQuit, EventMaintain, EventNextTurn, EventEnd} {
		err := sm.Trigger(ctx, event)
		assert.True(t, errors.Is(err, errors.ErrIllegalStateTransition), event)
		assert.False(t, sm.CanTransition(event))
	}
	assert.Equal(t, PhaseTerminal, sm.Phase())
}

func TestStateMachineRejectsOutOfOrderEvents(t *testing.T) {
	ctx := context.Background()
	sm := NewStateMachine("test-session", zap.NewNop())

	err := sm.Trigger(ctx, EventMaintain)
	assert.True(t, errors.Is(err, errors.ErrIllegalStateTransition))
	assert.Equal(t, PhaseStart, sm.Phase())
	assert.Equal(t, []string{EventBeginAction, EventEnd}, sm.ValidEvents())
}

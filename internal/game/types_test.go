package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/survival-game/internal/errors"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		input string
		want  Action
	}{
		{"explore", Action{Kind: ActionExplore}},
		{"  REST ", Action{Kind: ActionRest}},
		{"use raw meat", Action{Kind: ActionUse, Args: []string{"raw meat"}}},
		{"travel lake", Action{Kind: ActionTravel, Args: []string{"lake"}}},
		{"trade river_traders fishing rod", Action{Kind: ActionTrade, Args: []string{"river_traders", "fishing rod"}}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAction(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseActionErrors(t *testing.T) {
	for _, input := range []string{"", "dance", "use", "trade hermits"} {
		_, err := ParseAction(input)
		assert.True(t, apperrors.Is(err, apperrors.ErrUnknownAction), input)
	}
}

func TestActionCostKey(t *testing.T) {
	assert.Equal(t, "inventory", Action{Kind: ActionUse}.CostKey())
	assert.Equal(t, "inventory", Action{Kind: ActionEquip}.CostKey())
	assert.Equal(t, "travel", Action{Kind: ActionTravel}.CostKey())
	assert.Equal(t, "trade river_traders axe", Action{Kind: ActionTrade, Args: []string{"river_traders", "axe"}}.String())
	assert.Equal(t, "", Action{}.Arg(3))
}

func TestRejectCarriesCode(t *testing.T) {
	r := reject(Action{Kind: ActionRest}, apperrors.New(apperrors.ErrInsufficientEnergy, "需要 5"))
	assert.False(t, r.OK)
	assert.Equal(t, apperrors.ErrInsufficientEnergy, r.Code)
	assert.Contains(t, r.Reason, "需要 5")

	r = reject(Action{Kind: ActionRest}, errors.New("plain"))
	assert.Equal(t, "plain", r.Reason)
}

func TestSummaryDetachWithoutAction(t *testing.T) {
	s := Summary{Turn: 2, Player: "Ada"}
	assert.Equal(t, s, s.Detach())

	s.Action = &ActionResult{Action: "rest", OK: true}
	d := s.Detach()
	require.NotNil(t, d.Action)
	assert.NotSame(t, s.Action, d.Action)
	assert.Equal(t, *s.Action, *d.Action)
}

package game

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextPresenterRendersTurn(t *testing.T) {
	var out bytes.Buffer
	s, _ := newTestSession(t, "explore", "quit")
	s.rt.Presenter = NewTextPresenter(&out)

	_, err := s.Run(context.Background())
	assert.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "=== Turn 1 | Camp (clear) ===")
	assert.Contains(t, text, "Collected:")
	assert.Contains(t, text, "*** PLAYER_QUIT after 2 turns ***")
}

func TestMultiPresenterFansOut(t *testing.T) {
	var a, b []Phase
	m := MultiPresenter{
		PresenterFunc(func(s Summary) { a = append(a, s.Phase) }),
		nil,
		PresenterFunc(func(s Summary) { b = append(b, s.Phase) }),
	}
	m.Present(Summary{Phase: PhaseStart})
	assert.Equal(t, []Phase{PhaseStart}, a)
	assert.Equal(t, a, b)
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game"
	"go.uber.org/zap"
)

type recordingSubmitter struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (r *recordingSubmitter) Submit(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.actions = append(r.actions, text)
	return nil
}

func startHub(t *testing.T, submitter ActionSubmitter) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(time.Hour, zap.NewNop())
	if submitter != nil {
		hub.SetSubmitter(submitter)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, 0)
		hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeConnected, msg.Type)
	return hub, conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubBroadcastsSummary(t *testing.T) {
	hub, conn := startHub(t, nil)
	assert.Equal(t, 1, hub.GetOnlineCount())

	hub.Present(game.Summary{
		SessionID: "s-1",
		Turn:      4,
		Phase:     game.PhaseMaintenance,
		Ambient:   "camp",
	})

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeSummary, msg.Type)
	assert.Equal(t, "s-1", msg.SessionID)

	var summary game.Summary
	require.NoError(t, json.Unmarshal(msg.Data, &summary))
	assert.Equal(t, 4, summary.Turn)
	assert.Equal(t, game.PhaseMaintenance, summary.Phase)
	assert.Equal(t, "camp", summary.Ambient)
}

func TestClientSubmitsAction(t *testing.T) {
	submitter := &recordingSubmitter{}
	_, conn := startHub(t, submitter)

	require.NoError(t, conn.WriteJSON(Message{
		Type: MessageTypeAction,
		Data: json.RawMessage(`{"action":"explore"}`),
	}))

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeAck, msg.Type)

	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	assert.Equal(t, []string{"explore"}, submitter.actions)
}

func TestClientReportsSubmitError(t *testing.T) {
	submitter := &recordingSubmitter{err: apperrors.New(apperrors.ErrGameOver)}
	_, conn := startHub(t, submitter)

	require.NoError(t, conn.WriteJSON(Message{
		Type: MessageTypeAction,
		Data: json.RawMessage(`{"action":"rest"}`),
	}))

	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, apperrors.ErrGameOver, payload.Code)
}

func TestClientRejectsBadMessages(t *testing.T) {
	_, conn := startHub(t, nil)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)

	require.NoError(t, conn.WriteJSON(Message{Type: "teleport"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageTypeError, msg.Type)

	// 没有会话接收行动
	require.NoError(t, conn.WriteJSON(Message{
		Type: MessageTypeAction,
		Data: json.RawMessage(`{"action":"rest"}`),
	}))
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeError, msg.Type)
	var payload errorPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, apperrors.ErrNotFound, payload.Code)
}

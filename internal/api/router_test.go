package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game"
	"github.com/wfunc/survival-game/internal/game/catalog"
	"github.com/wfunc/survival-game/internal/repository"
	ws "github.com/wfunc/survival-game/internal/websocket"
	"go.uber.org/zap"
)

type testServer struct {
	router   *Router
	sessions *game.SessionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repository.TestDB(t)
	slots := repository.NewSaveSlotRepository(db)
	records := repository.NewTurnRecordRepository(db)
	store := game.NewDatabaseSlotStore(slots)

	cat, err := catalog.Default()
	require.NoError(t, err)
	cfg := config.Default()

	hub := ws.NewHub(time.Hour, zap.NewNop())
	sessions := game.NewSessionManager(&game.SessionConfig{
		Runtime: game.Runtime{
			Catalog: cat,
			Config:  &cfg.Game,
			Store:   store,
			Journal: game.NewDatabaseJournal(records),
		},
		Recovery: game.NewRecoveryManager(zap.NewNop(), store, cfg.Game.AutosaveSlot),
		Observer: hub,
	})
	hub.SetSubmitter(sessions)
	t.Cleanup(func() {
		_ = sessions.Stop(context.Background())
	})

	router := NewRouter(&RouterConfig{
		DB:        db,
		Sessions:  sessions,
		Store:     store,
		Slots:     slots,
		Records:   records,
		Hub:       hub,
		WebSocket: cfg.WebSocket,
	})
	return &testServer{router: router, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.GetEngine().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndNotFound(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = srv.do(t, http.MethodGet, "/api/v1/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// 还没有游戏
	w := srv.do(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.ErrNotFound, decodeError(t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/v1/session", StartRequest{PlayerName: "Ada", Seed: 7})
	require.Equal(t, http.StatusCreated, w.Code)
	var summary game.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "Ada", summary.Player)
	assert.Equal(t, 1, summary.Turn)
	assert.NotEmpty(t, summary.SessionID)

	w = srv.do(t, http.MethodPost, "/api/v1/session", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errors.ErrAlreadyExists, decodeError(t, w).Code)

	w = srv.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/session/actions", ActionRequest{Action: "fly"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrUnknownAction, decodeError(t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/v1/session/actions", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrInvalidParam, decodeError(t, w).Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 停止后写入了自动存档
	w = srv.do(t, http.MethodGet, "/api/v1/slots/autosave", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slot SlotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Equal(t, "Ada", slot.Player)
	assert.Equal(t, 1, slot.Turn)
	assert.Equal(t, game.SchemaVersion, slot.SchemaVersion)
	assert.False(t, slot.SavedAt.IsZero())

	w = srv.do(t, http.MethodPost, "/api/v1/session/actions", ActionRequest{Action: "rest"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 继续存档
	w = srv.do(t, http.MethodPost, "/api/v1/session", StartRequest{Resume: true})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "Ada", summary.Player)
}

func TestSlotEndpoints(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/slots/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.ErrSlotNotFound, decodeError(t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/v1/session", StartRequest{PlayerName: "Ben", Seed: 11})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, srv.sessions.Stop(context.Background()))

	w = srv.do(t, http.MethodGet, "/api/v1/slots?page=1&page_size=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items    []SlotResponse `json:"items"`
		Total    int64          `json:"total"`
		PageSize int            `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 5, list.PageSize)
	assert.Equal(t, "autosave", list.Items[0].Name)
	assert.Equal(t, "Ben", list.Items[0].Player)

	w = srv.do(t, http.MethodDelete, "/api/v1/slots/autosave", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/slots/autosave", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTurnsAndOnlineCount(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/v1/sessions/unknown/turns", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = srv.do(t, http.MethodGet, "/api/v1/ws/online", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"online_count":0`)
}

func TestListWithoutDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(&RouterConfig{
		Sessions: game.NewSessionManager(&game.SessionConfig{}),
		Store:    game.NewMemorySlotStore(),
	})

	w := httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/slots", nil))
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = httptest.NewRecorder()
	router.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/survival-game/internal/game"
	"go.uber.org/zap"
)

// SessionHandler 托管游戏接口
type SessionHandler struct {
	sessions *game.SessionManager
	defaults game.NewGameOptions
	logger   *zap.Logger
}

// NewSessionHandler 创建托管游戏处理器
func NewSessionHandler(sessions *game.SessionManager, defaults game.NewGameOptions, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		defaults: defaults,
		logger:   logger,
	}
}

// StartRequest 开始游戏请求，未填写的字段使用配置默认值
type StartRequest struct {
	PlayerName string `json:"player_name"`
	Archetype  string `json:"archetype"`
	Ambient    string `json:"ambient"`
	Seed       int64  `json:"seed"`
	Resume     bool   `json:"resume"`
}

// ActionRequest 提交行动请求
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Start 开始或继续一局游戏
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	opts := h.defaults
	if req.PlayerName != "" {
		opts.PlayerName = req.PlayerName
	}
	if req.Archetype != "" {
		opts.Archetype = req.Archetype
	}
	if req.Ambient != "" {
		opts.Ambient = req.Ambient
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}

	summary, err := h.sessions.Start(c.Request.Context(), opts, req.Resume)
	if err != nil {
		h.logger.Warn("开始游戏失败", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// Get 最近一次阶段摘要
func (h *SessionHandler) Get(c *gin.Context) {
	summary, err := h.sessions.Latest()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Submit 提交行动
func (h *SessionHandler) Submit(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.sessions.Submit(c.Request.Context(), req.Action); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "行动已提交", Data: req})
}

// Stop 停止游戏，未结束的游戏写入自动存档
func (h *SessionHandler) Stop(c *gin.Context) {
	if err := h.sessions.Stop(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "游戏已停止"})
}

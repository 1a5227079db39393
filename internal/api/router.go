// Package api 托管游戏的 HTTP 与 WebSocket 接口
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/survival-game/internal/config"
	"github.com/wfunc/survival-game/internal/game"
	"github.com/wfunc/survival-game/internal/middleware"
	"github.com/wfunc/survival-game/internal/repository"
	ws "github.com/wfunc/survival-game/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RouterConfig 路由器依赖
// DB、Slots、Records、Hub 可以为空，对应接口会返回未实现或不注册
type RouterConfig struct {
	Mode      string
	DB        *gorm.DB
	Sessions  *game.SessionManager
	Store     game.SlotStore
	Slots     repository.SaveSlotRepository
	Records   repository.TurnRecordRepository
	Hub       *ws.Hub
	WebSocket config.WebSocketConfig
	Defaults  game.NewGameOptions
	Logger    *zap.Logger
}

// Router API路由器
type Router struct {
	engine         *gin.Engine
	db             *gorm.DB
	sessionHandler *SessionHandler
	slotHandler    *SlotHandler
	wsHandler      *WebSocketHandler
	wsPath         string
	log            *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(cfg *RouterConfig) *Router {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestLogger())

	router := &Router{
		engine:         engine,
		db:             cfg.DB,
		sessionHandler: NewSessionHandler(cfg.Sessions, cfg.Defaults, log),
		slotHandler:    NewSlotHandler(cfg.Store, cfg.Slots, cfg.Records, log),
		wsPath:         cfg.WebSocket.Path,
		log:            log,
	}
	if cfg.Hub != nil {
		router.wsHandler = NewWebSocketHandler(cfg.Hub, cfg.WebSocket, log)
	}
	if router.wsPath == "" {
		router.wsPath = "/ws"
	}

	// 设置路由
	router.setupRoutes()

	return router
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		session := v1.Group("/session")
		{
			session.POST("", r.sessionHandler.Start)
			session.GET("", r.sessionHandler.Get)
			session.POST("/actions", r.sessionHandler.Submit)
			session.DELETE("", r.sessionHandler.Stop)
		}

		slots := v1.Group("/slots")
		{
			slots.GET("", r.slotHandler.List)
			slots.GET("/:name", r.slotHandler.Get)
			slots.DELETE("/:name", r.slotHandler.Delete)
		}

		v1.GET("/sessions/:id/turns", r.slotHandler.Turns)
	}

	// WebSocket路由
	if r.wsHandler != nil {
		r.engine.GET(r.wsPath, r.wsHandler.Connect)
		v1.GET("/ws/online", r.wsHandler.OnlineCount)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
		})
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	if r.db != nil {
		// 检查数据库连接
		sqlDB, err := r.db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "unhealthy",
				"message": "数据库连接失败",
			})
			return
		}
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "unhealthy",
				"message": "数据库ping失败",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "服务运行正常",
	})
}

// Run 运行服务器
func (r *Router) Run(addr string) error {
	r.log.Info("Starting API server", zap.String("address", addr))
	return r.engine.Run(addr)
}

// GetEngine 获取Gin引擎（用于测试）
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

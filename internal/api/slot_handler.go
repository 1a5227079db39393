package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/game"
	"github.com/wfunc/survival-game/internal/repository"
	"go.uber.org/zap"
)

// SlotHandler 存档槽接口
type SlotHandler struct {
	store   game.SlotStore
	slots   repository.SaveSlotRepository // 仅数据库存储时可用
	records repository.TurnRecordRepository
	logger  *zap.Logger
}

// NewSlotHandler 创建存档处理器
func NewSlotHandler(store game.SlotStore, slots repository.SaveSlotRepository, records repository.TurnRecordRepository, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{
		store:   store,
		slots:   slots,
		records: records,
		logger:  logger,
	}
}

// SlotResponse 存档摘要
type SlotResponse struct {
	Name          string    `json:"name"`
	SchemaVersion int       `json:"schema_version"`
	Turn          int       `json:"turn"`
	Player        string    `json:"player"`
	Archetype     string    `json:"archetype"`
	Ambient       string    `json:"ambient"`
	SavedAt       time.Time `json:"saved_at"`
	Size          int       `json:"size"`
}

// ListResponse 分页列表响应
type ListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Pages    int         `json:"pages"`
}

// List 列出存档，只有数据库存储支持
func (h *SlotHandler) List(c *gin.Context) {
	if h.slots == nil {
		respondError(c, errors.New(errors.ErrNotImplemented, "当前存储不支持列出存档"))
		return
	}
	p := repository.NewPagination(queryInt(c, "page", 1), queryInt(c, "page_size", repository.DefaultPageSize))
	slots, err := h.slots.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrStorageIO, "列出存档失败"))
		return
	}

	items := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		items = append(items, SlotResponse{
			Name:          s.Name,
			SchemaVersion: s.SchemaVersion,
			Turn:          s.TurnCounter,
			Player:        s.PlayerName,
			Archetype:     s.Archetype,
			Ambient:       s.Ambient,
			SavedAt:       s.SavedAt,
		})
	}
	c.JSON(http.StatusOK, ListResponse{Items: items, Total: p.Total, Page: p.Page, PageSize: p.PageSize, Pages: p.TotalPages()})
}

// Get 读取存档摘要
func (h *SlotHandler) Get(c *gin.Context) {
	name := c.Param("name")
	data, err := h.store.ReadNamedSlot(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	header, err := game.Peek(data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SlotResponse{
		Name:          name,
		SchemaVersion: header.SchemaVersion,
		Turn:          header.Turn,
		Player:        header.Player,
		Archetype:     header.Archetype,
		Ambient:       header.Ambient,
		SavedAt:       header.SavedAt,
		Size:          len(data),
	})
}

// Delete 删除存档
func (h *SlotHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	ok, err := h.store.Exists(c.Request.Context(), name)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		respondError(c, errors.Newf(errors.ErrSlotNotFound, "存档 %s 不存在", name))
		return
	}
	if err := h.store.Delete(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("存档已删除", zap.String("slot", name))
	c.JSON(http.StatusOK, SuccessResponse{Message: "存档已删除"})
}

// Turns 分页查询会话的回合日志
func (h *SlotHandler) Turns(c *gin.Context) {
	if h.records == nil {
		respondError(c, errors.New(errors.ErrNotImplemented, "未启用回合日志"))
		return
	}
	p := repository.NewPagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	records, err := h.records.FindBySessionID(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		respondError(c, errors.Wrap(err, errors.ErrDatabaseQuery, "查询回合日志失败"))
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: records, Total: p.Total, Page: p.Page, PageSize: p.PageSize, Pages: p.TotalPages()})
}

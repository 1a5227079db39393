// Package websocket 把回合摘要推送给浏览器客户端，并接收客户端提交的行动
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/survival-game/internal/game"
	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// 客户端提交的行动转交给会话
	submitter ActionSubmitter

	pingInterval time.Duration
	logger       *zap.Logger
}

// ActionSubmitter 接收客户端行动
type ActionSubmitter interface {
	Submit(ctx context.Context, text string) error
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// 消息类型
const (
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"

	MessageTypeSummary = "summary" // 服务端推送阶段摘要
	MessageTypeAction  = "action"  // 客户端提交行动
	MessageTypeAck     = "ack"     // 行动已入队
)

// ActionPayload 行动消息数据
type ActionPayload struct {
	Action string `json:"action"`
}

// NewHub 创建Hub
func NewHub(pingInterval time.Duration, logger *zap.Logger) *Hub {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Hub{
		clients:      make(map[string]*Client),
		broadcast:    make(chan *Message, 256),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		done:         make(chan struct{}),
		pingInterval: pingInterval,
		logger:       logger,
	}
}

// SetSubmitter 设置行动接收方，须在 Run 之前调用
func (h *Hub) SetSubmitter(submitter ActionSubmitter) {
	h.submitter = submitter
}

// Run 运行Hub，ctx 取消后关闭所有客户端
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ticker.C:
			h.broadcastMessage(&Message{Type: MessageTypePing, Timestamp: time.Now().Unix()})
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接", zap.String("client_id", client.ID))

	msg := &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"client_id":"` + client.ID + `"}`),
	}
	if err := h.SendToClient(client.ID, msg); err != nil {
		h.logger.Warn("发送连接消息失败", zap.String("client_id", client.ID), zap.Error(err))
	}
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端断开", zap.String("client_id", client.ID))
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
}

// broadcastMessage 广播消息
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}
	logger.LogWebSocketMessage("send", message.Type, nil)

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("客户端发送缓冲区满", zap.String("client_id", client.ID))
		}
	}
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	client, ok := h.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Present 把阶段摘要广播给所有客户端，实现 game.Presenter
// 广播通道满时丢弃，回合循环不会被慢客户端阻塞
func (h *Hub) Present(s game.Summary) {
	data, err := json.Marshal(s)
	if err != nil {
		h.logger.Error("序列化摘要失败", zap.Error(err))
		return
	}
	msg := &Message{
		Type:      MessageTypeSummary,
		SessionID: s.SessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("广播队列已满，丢弃摘要",
			zap.Int("turn", s.Turn),
			zap.String("phase", string(s.Phase)))
	}
}

// GetOnlineCount 在线客户端数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Register 注册客户端，Hub 已停止时直接关闭客户端发送通道
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister 注销客户端
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	apperrors "github.com/wfunc/survival-game/internal/errors"
	"github.com/wfunc/survival-game/internal/logger"
	"go.uber.org/zap"
)

// 错误定义
var (
	ErrClientNotFound = errors.New("客户端未找到")
	ErrSendBufferFull = errors.New("发送缓冲区已满")
)

// WebSocket配置
const (
	// 写超时
	writeWait = 10 * time.Second

	// 读取pong超时
	pongWait = 60 * time.Second

	// ping发送周期（必须小于pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 提交行动的超时
	submitWait = 2 * time.Second
)

// Client WebSocket客户端
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	maxMessageSize int64
}

// NewClient 创建新客户端
func NewClient(hub *Hub, conn *websocket.Conn, maxMessageSize int64) *Client {
	if maxMessageSize <= 0 {
		maxMessageSize = 8192
	}
	return &Client{
		ID:             uuid.New().String(),
		Hub:            hub,
		Conn:           conn,
		Send:           make(chan []byte, 256),
		maxMessageSize: maxMessageSize,
	}
}

// ReadPump 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Error("WebSocket读取错误",
					zap.String("client_id", c.ID),
					zap.Error(err))
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub关闭了通道
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage 处理接收到的消息
func (c *Client) handleMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Hub.logger.Warn("解析WebSocket消息失败",
			zap.String("client_id", c.ID),
			zap.Error(err))
		c.sendError(apperrors.ErrInvalidParam, "消息格式错误")
		return
	}
	logger.LogWebSocketMessage("receive", msg.Type, json.RawMessage(msg.Data))

	switch msg.Type {
	case MessageTypePong, MessageTypePing:
		// 心跳

	case MessageTypeAction:
		var payload ActionPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Action == "" {
			c.sendError(apperrors.ErrInvalidParam, "缺少行动")
			return
		}
		if c.Hub.submitter == nil {
			c.sendError(apperrors.ErrNotFound, "没有进行中的游戏")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), submitWait)
		defer cancel()
		if err := c.Hub.submitter.Submit(ctx, payload.Action); err != nil {
			c.sendError(apperrors.GetCode(err), err.Error())
			return
		}
		c.send(MessageTypeAck, payload)

	default:
		c.sendError(apperrors.ErrInvalidParam, "不支持的消息类型: "+msg.Type)
	}
}

// errorPayload 错误消息数据
type errorPayload struct {
	Code  apperrors.ErrorCode `json:"code"`
	Error string              `json:"error"`
}

// sendError 发送错误消息
func (c *Client) sendError(code apperrors.ErrorCode, message string) {
	c.send(MessageTypeError, errorPayload{Code: code, Error: message})
}

// send 发送消息给客户端
func (c *Client) send(msgType string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		c.Hub.logger.Error("序列化消息失败", zap.Error(err))
		return
	}
	msg := &Message{Type: msgType, Data: raw, Timestamp: time.Now().Unix()}
	if err := c.Hub.SendToClient(c.ID, msg); err != nil {
		c.Hub.logger.Warn("发送消息失败", zap.String("client_id", c.ID), zap.Error(err))
	}
}

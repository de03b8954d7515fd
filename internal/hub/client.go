// internal/hub/client.go
package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client 代表一个连接到 Hub 的 WebSocket 参与者。
// pending/gated/replayGen 仅由 Hub 的事件循环访问。
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string      // 参与者 ID,连接建立时由服务端分配
	send chan []byte // 用于向此客户端发送消息的缓冲通道

	// 回放门控状态(仅 Hub 循环访问)
	pending   [][]byte // 回放送达前缓存的实时帧
	gated     bool     // true 表示实时帧暂不投递
	replayGen int      // 每次加入房间递增,用于丢弃过期回放
}

// NewClient 创建一个新的 Client 实例
func NewClient(hub *Hub, conn *websocket.Conn, participantID string) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   participantID,
		send: make(chan []byte, 256),
	}
}

// ID 返回参与者 ID。
func (c *Client) ID() string { return c.id }

// Run 启动客户端的读写 goroutine
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// trySend 将消息放入客户端发送队列 (非阻塞)。
// 队列已满通常意味着客户端读取过慢,丢帧并记录。
func (c *Client) trySend(message []byte) {
	select {
	case c.send <- message:
	default:
		logrus.WithField("participant_id", c.id).Warn("Client send channel full, dropping frame")
	}
}

// ReadPump 将消息从 WebSocket 连接泵送到 Hub 的 messageChan。
// 它在自己的 goroutine 中运行。
func (c *Client) ReadPump() {
	defer func() {
		// 清理操作：请求 Hub 注销此客户端
		unregisterMsg := HubMessage{Type: "unregister", Client: c}
		select {
		case c.hub.messageChan <- unregisterMsg:
		case <-time.After(1 * time.Second):
			logrus.WithField("participant_id", c.id).Warn("Timeout sending unregister message to Hub channel")
		}
		c.conn.Close()
		logrus.WithField("participant_id", c.id).Info("readPump exited, unregistered client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithField("participant_id", c.id)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			break
		}

		if messageType != websocket.TextMessage {
			logrus.WithField("participant_id", c.id).Debugf("Received non-text message type: %d", messageType)
			continue
		}

		eventMsg := HubMessage{
			Type:    "event",
			Client:  c,
			RawData: message,
		}
		// 非阻塞发送到 Hub，如果 Hub 处理不过来则丢弃
		select {
		case c.hub.messageChan <- eventMsg:
		default:
			logrus.WithField("participant_id", c.id).Warn("Hub message channel full, dropping client message")
		}
	}
}

// WritePump 将消息从 Client 的 send 通道泵送到 WebSocket 连接。
// 它在自己的 goroutine 中运行。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logrus.WithField("participant_id", c.id).Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// send 通道被 Hub 关闭了（通常在注销时）
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("participant_id", c.id).WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			// 定时器触发，发送 Ping 消息以保持连接活跃并检测断开
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.WithField("participant_id", c.id).WithError(err).Warn("Failed to send ping message")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
		}
	}
}

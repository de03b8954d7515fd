// internal/client/client.go
// Package client 提供白板服务的 Go 参与者客户端:
// 维护本地画布与快照历史,并与服务端按固定扇出契约交换事件。
package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/dto"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/history"
)

// Canvas 是客户端渲染目标的抽象。
// 实现无需并发安全,Client 保证串行调用。
type Canvas interface {
	ApplyStroke(stroke domain.StrokeData)
	Clear()
	Snapshot() history.Snapshot
	Restore(snapshot history.Snapshot)
}

// Client 是一个白板参与者。
// 所有画布与历史的变更(本地操作和远端事件)都在 mu 下串行执行。
type Client struct {
	conn   *websocket.Conn
	canvas Canvas

	mu        sync.Mutex
	hist      *history.History
	roomID    string
	userCount int

	done chan struct{}
}

// Dial 建立到白板服务的 WebSocket 连接。
// wsURL 形如 ws://host:port/ws。
func Dial(ctx context.Context, wsURL string, canvas Canvas) (*Client, error) {
	if canvas == nil {
		panic("Canvas cannot be nil for Client")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:   conn,
		canvas: canvas,
		hist:   history.New(),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close 关闭连接,读循环随之退出。
func (c *Client) Close() error {
	return c.conn.Close()
}

// Done 在读循环退出后关闭,可用于等待连接结束。
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// JoinRoom 请求加入房间。画布与历史被重置,
// 真实内容由服务端随后的回放帧恢复。
func (c *Client) JoinRoom(roomID string) error {
	c.mu.Lock()
	c.roomID = roomID
	c.canvas.Clear()
	c.hist.Reset(c.canvas.Snapshot())
	c.mu.Unlock()
	return c.sendEvent(dto.EventJoinRoom, dto.JoinRoomPayload{RoomID: roomID})
}

// StrokeStart 开始一条本地笔画并同步到服务端。
func (c *Client) StrokeStart(x, y float64, color string, width float64) error {
	c.applyLocal(domain.StrokeData{Action: domain.StrokeStart, X: x, Y: y, Color: color, StrokeWidth: width})
	return c.sendEvent(dto.EventDrawStart, dto.DrawStartPayload{RoomID: c.currentRoom(), X: x, Y: y, Color: color, StrokeWidth: width})
}

// StrokeMove 延伸当前本地笔画。
func (c *Client) StrokeMove(x, y float64) error {
	c.applyLocal(domain.StrokeData{Action: domain.StrokeMove, X: x, Y: y})
	return c.sendEvent(dto.EventDrawMove, dto.DrawMovePayload{RoomID: c.currentRoom(), X: x, Y: y})
}

// StrokeEnd 结束当前本地笔画,记录一个历史快照点。
func (c *Client) StrokeEnd() error {
	c.mu.Lock()
	c.canvas.ApplyStroke(domain.StrokeData{Action: domain.StrokeEnd})
	c.hist.Push(c.canvas.Snapshot())
	c.mu.Unlock()
	return c.sendEvent(dto.EventDrawEnd, dto.RoomOnlyPayload{RoomID: c.currentRoom()})
}

// Clear 清空画布并通知服务端。历史重置为空白基线。
func (c *Client) Clear() error {
	c.mu.Lock()
	c.canvas.Clear()
	c.hist.Reset(c.canvas.Snapshot())
	c.mu.Unlock()
	return c.sendEvent(dto.EventClear, dto.RoomOnlyPayload{RoomID: c.currentRoom()})
}

// Undo 回退一步并通知其他参与者。
// 无步可退时是本地 no-op,不发出任何事件。
func (c *Client) Undo() error {
	c.mu.Lock()
	snapshot, ok := c.hist.Undo()
	if ok {
		c.canvas.Restore(snapshot)
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.sendEvent(dto.EventUndo, dto.RoomOnlyPayload{RoomID: c.currentRoom()})
}

// Redo 前进一步并通知其他参与者。
// 无步可进时是本地 no-op,不发出任何事件。
func (c *Client) Redo() error {
	c.mu.Lock()
	snapshot, ok := c.hist.Redo()
	if ok {
		c.canvas.Restore(snapshot)
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}
	return c.sendEvent(dto.EventRedo, dto.RoomOnlyPayload{RoomID: c.currentRoom()})
}

// CursorMove 广播光标位置,不参与历史与回放。
func (c *Client) CursorMove(x, y float64) error {
	return c.sendEvent(dto.EventCursorMove, dto.CursorMovePayload{RoomID: c.currentRoom(), X: x, Y: y})
}

// UserCount 返回最近一次服务端同步的房间人数。
func (c *Client) UserCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userCount
}

// CanUndo 报告当前是否有可撤销的步骤。
func (c *Client) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.CanUndo()
}

// CanRedo 报告当前是否有可重做的步骤。
func (c *Client) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hist.CanRedo()
}

func (c *Client) currentRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomID
}

func (c *Client) applyLocal(stroke domain.StrokeData) {
	c.mu.Lock()
	c.canvas.ApplyStroke(stroke)
	c.mu.Unlock()
}

func (c *Client) sendEvent(eventType string, payload interface{}) error {
	env, err := dto.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	frame, err := env.Encode()
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// readLoop 消费服务端帧并串行更新画布与历史。
func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			logrus.WithError(err).Debug("Client connection closed")
			return
		}
		var env dto.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			logrus.WithError(err).Warn("Client received undecodable frame, skipping")
			continue
		}
		c.handleEvent(env)
	}
}

func (c *Client) handleEvent(env dto.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch env.Type {
	case dto.EventLoadDrawingData:
		var p dto.LoadDrawingDataPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			logrus.WithError(err).Warn("Client failed to decode replay payload")
			return
		}
		c.replay(p.Commands)

	case dto.EventDrawStart, dto.EventDrawMove:
		var p dto.DrawStartPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		action := domain.StrokeStart
		if env.Type == dto.EventDrawMove {
			action = domain.StrokeMove
		}
		c.canvas.ApplyStroke(domain.StrokeData{Action: action, X: p.X, Y: p.Y, Color: p.Color, StrokeWidth: p.StrokeWidth})

	case dto.EventDrawEnd:
		// 远端笔画结束也构成一个历史点:撤销以完整笔画为粒度
		c.canvas.ApplyStroke(domain.StrokeData{Action: domain.StrokeEnd})
		c.hist.Push(c.canvas.Snapshot())

	case dto.EventClear:
		c.canvas.Clear()
		c.hist.Reset(c.canvas.Snapshot())

	case dto.EventUndo:
		// 远端撤销只调整本地状态,决不回发事件,否则形成通知循环
		if snapshot, ok := c.hist.Undo(); ok {
			c.canvas.Restore(snapshot)
		}

	case dto.EventRedo:
		if snapshot, ok := c.hist.Redo(); ok {
			c.canvas.Restore(snapshot)
		}

	case dto.EventUserCount:
		var p dto.UserCountPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return
		}
		c.userCount = p.Count

	case dto.EventUserLeft, dto.EventCursorMove:
		// 展示层事件,核心状态无需变更
	}
}

// replay 按日志顺序重建画布,并以结果作为历史基线。
func (c *Client) replay(commands []domain.DrawingCommand) {
	c.canvas.Clear()
	for _, cmd := range commands {
		switch cmd.Type {
		case domain.CommandStroke:
			stroke, err := cmd.ParseStrokeData()
			if err != nil {
				logrus.WithError(err).Warn("Client skipping unparsable stroke in replay")
				continue
			}
			c.canvas.ApplyStroke(stroke)
		case domain.CommandClear:
			c.canvas.Clear()
		}
		// undo/redo 标记命令不改变画布,回放时跳过
	}
	c.hist.Reset(c.canvas.Snapshot())
}

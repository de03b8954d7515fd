// internal/hub/hub.go
// Package hub 维护活跃 WebSocket 客户端集合,并在单一事件循环内
// 完成加入/离开广播、绘图事件扇出与加入回放的协调。
package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/dto"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/registry"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/service"
)

// 包级别的 WebSocket 常量，供 hub 和 client 包内使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// 每个回放中客户端允许积压的实时帧数量，超出后丢弃最新帧。
	maxPendingFrames = 256
)

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "event", "replayLoaded"
	Client  *Client // 消息关联的客户端
	RawData []byte  // 仅用于 event (原始 WebSocket 帧) 和 replayLoaded (回放帧)
	RoomID  string  // 仅用于 replayLoaded
	Gen     int     // 仅用于 replayLoaded,对应发起回放时的 replayGen
}

// Hub 维护活跃客户端集合并协调消息处理。
// clients 与各 Client 的 pending/gated/replayGen 字段只在 Run 循环内访问,
// 因此无需加锁;所有外部输入都经由 messageChan 串行化。
type Hub struct {
	messageChan chan HubMessage

	// participantID -> Client,仅 Run 循环访问
	clients map[string]*Client

	reg      *registry.Registry
	relaySvc *service.RelayService
	logSvc   *service.CommandLogService
	roomSvc  *service.RoomService
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(reg *registry.Registry, relaySvc *service.RelayService, logSvc *service.CommandLogService, roomSvc *service.RoomService) *Hub {
	if reg == nil {
		panic("Registry cannot be nil for Hub")
	}
	if relaySvc == nil {
		panic("RelayService cannot be nil for Hub")
	}
	if logSvc == nil {
		panic("CommandLogService cannot be nil for Hub")
	}
	if roomSvc == nil {
		panic("RoomService cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		clients:     make(map[string]*Client),
		reg:         reg,
		relaySvc:    relaySvc,
		logSvc:      logSvc,
		roomSvc:     roomSvc,
	}
}

// Run 启动 Hub 的主事件处理循环。
// 它应该在一个单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		case "event":
			h.handleClientEvent(msg)
		case "replayLoaded":
			h.handleReplayLoaded(msg)
		default:
			log.Warnf("Hub: Received unknown message type: %s", msg.Type)
		}
	}
	log.Info("Hub is shutting down...")
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 这是 Client 向 Hub 发送消息的安全方式。
// 返回 true 如果消息成功入队，false 如果队列已满。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// registerClient 处理客户端注册逻辑。
// 注册时客户端尚未加入任何房间,房间归属由后续 join-room 事件建立。
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	h.clients[client.id] = client
	logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"action":         "registerClient",
	}).Info("Client registered to Hub")
}

// unregisterClient 处理客户端注销逻辑。
// 断连等同于对当前房间执行 leave 语义。
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"action":         "unregisterClient",
	})

	if _, ok := h.clients[client.id]; !ok {
		logCtx.Warn("Client not found during unregister")
		return
	}
	delete(h.clients, client.id)

	if dep, ok := h.reg.Disconnect(client.id); ok {
		h.announceDeparture(client.id, dep)
	}

	select {
	case <-client.send:
		logCtx.Warn("Client send channel already closed or has data during unregister")
	default:
		close(client.send)
	}
	logCtx.Info("Client unregistered from Hub")
}

// handleClientEvent 处理客户端发来的一条原始 WebSocket 帧
func (h *Hub) handleClientEvent(msg HubMessage) {
	client := msg.Client
	if client == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"operation":      "handleClientEvent",
	})

	var env dto.Envelope
	if err := json.Unmarshal(msg.RawData, &env); err != nil {
		logCtx.WithError(err).Warn("Failed to decode client frame, dropping")
		return
	}

	switch env.Type {
	case dto.EventJoinRoom:
		h.handleJoin(client, env)
		return
	case dto.EventLeaveRoom:
		h.handleLeave(client)
		return
	}

	currentRoom, ok := h.reg.RoomOf(client.id)
	if !ok {
		logCtx.WithField("event_type", env.Type).Warn("Event from client without a room, dropping")
		return
	}

	decision, err := h.relaySvc.Process(client.id, currentRoom, env)
	if err != nil {
		logCtx.WithError(err).WithField("event_type", env.Type).Warn("Event rejected by relay")
		return
	}
	if decision.Scope == service.ScopeNone {
		return
	}

	exclude := client.id
	if decision.Scope == service.ScopeAll {
		exclude = ""
	}
	h.broadcastRoom(currentRoom, decision.Message, exclude, false)
}

// handleJoin 处理 join-room 事件:更新注册表、广播人数变化、
// 并异步加载绘图日志用于回放。回放送达前,该客户端的实时帧被缓存。
func (h *Hub) handleJoin(client *Client, env dto.Envelope) {
	logCtx := logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"operation":      "handleJoin",
	})

	var p dto.JoinRoomPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil {
		logCtx.WithError(err).Warn("Failed to decode join-room payload, dropping")
		return
	}
	roomID, err := service.NormalizeRoomCode(p.RoomID)
	if err != nil {
		logCtx.WithError(err).WithField("room_code", p.RoomID).Warn("Invalid room code on join, dropping")
		return
	}
	logCtx = logCtx.WithField("room_id", roomID)

	if prev, ok := h.reg.RoomOf(client.id); ok && prev == roomID {
		logCtx.Debug("Client re-joined current room, nothing to do")
		return
	}

	res := h.reg.Join(client.id, roomID)
	if res.Departed != nil {
		// 隐式离开上一个房间,按普通离开广播
		h.announceDeparture(client.id, res.Departed)
	}

	// 新房间全员(含加入者)同步人数
	h.broadcastUserCount(roomID, len(res.Members))

	// 回放到达前缓存实时帧;replayGen 防止快速换房时旧回放错投
	client.gated = true
	client.replayGen++
	client.pending = client.pending[:0]
	gen := client.replayGen

	go h.loadReplay(client, roomID, gen)
	logCtx.WithField("member_count", len(res.Members)).Info("Client joined room")
}

// handleLeave 处理显式 leave-room 事件
func (h *Hub) handleLeave(client *Client) {
	roomID, ok := h.reg.RoomOf(client.id)
	if !ok {
		return
	}
	dep, ok := h.reg.Leave(client.id, roomID)
	if !ok {
		return
	}
	// 离开房间后不再有待回放的帧
	client.gated = false
	client.pending = nil
	h.announceDeparture(client.id, dep)
	logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"room_id":        roomID,
	}).Info("Client left room")
}

// loadReplay 在独立 goroutine 中加载房间日志并投递回 Hub 循环。
// 数据库与缓存 IO 不允许阻塞事件循环。
func (h *Hub) loadReplay(client *Client, roomID string, gen int) {
	ctx := context.Background()
	logCtx := logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"room_id":        roomID,
		"operation":      "loadReplay",
	})

	h.roomSvc.TouchRoom(ctx, roomID)

	cmds, err := h.logSvc.Load(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load drawing log for replay")
		cmds = nil // 空回放仍要送达,否则客户端永远处于缓存状态
	}
	env, err := dto.NewEnvelope(dto.EventLoadDrawingData, dto.LoadDrawingDataPayload{Commands: cmds})
	if err != nil {
		logCtx.WithError(err).Error("Failed to build replay envelope")
		return
	}
	frame, err := env.Encode()
	if err != nil {
		logCtx.WithError(err).Error("Failed to encode replay envelope")
		return
	}

	if !h.QueueMessage(HubMessage{Type: "replayLoaded", Client: client, RawData: frame, RoomID: roomID, Gen: gen}) {
		logCtx.Error("Failed to queue replay delivery")
	}
}

// handleReplayLoaded 将回放帧送达客户端并放行其缓存的实时帧。
// 过期的回放(客户端已换房或重新加入)被直接丢弃。
func (h *Hub) handleReplayLoaded(msg HubMessage) {
	client := msg.Client
	if client == nil {
		return
	}
	if _, ok := h.clients[client.id]; !ok {
		return // 客户端已断开
	}
	if client.replayGen != msg.Gen {
		logrus.WithFields(logrus.Fields{
			"participant_id": client.id,
			"room_id":        msg.RoomID,
		}).Debug("Stale replay discarded")
		return
	}
	if room, ok := h.reg.RoomOf(client.id); !ok || room != msg.RoomID {
		return
	}

	client.trySend(msg.RawData)
	for _, frame := range client.pending {
		client.trySend(frame)
	}
	client.pending = nil
	client.gated = false
	logrus.WithFields(logrus.Fields{
		"participant_id": client.id,
		"room_id":        msg.RoomID,
	}).Info("Replay delivered, client is live")
}

// announceDeparture 按离开语义广播:user-left 给剩余参与者,
// 随后向剩余全员同步新的人数。房间清空时无人可通知。
func (h *Hub) announceDeparture(participantID string, dep *registry.Departure) {
	if dep == nil || dep.Cold {
		return
	}
	if env, err := dto.NewEnvelope(dto.EventUserLeft, dto.UserLeftPayload{UserID: participantID}); err == nil {
		if frame, err := env.Encode(); err == nil {
			h.broadcastTo(dep.Remaining, frame, "", true)
		}
	}
	h.broadcastUserCount(dep.RoomID, len(dep.Remaining))
}

// broadcastUserCount 向房间全员广播当前人数。
// 人数消息绕过回放门控:加入者在回放前就应看到正确人数。
func (h *Hub) broadcastUserCount(roomID string, count int) {
	env, err := dto.NewEnvelope(dto.EventUserCount, dto.UserCountPayload{Count: count})
	if err != nil {
		return
	}
	frame, err := env.Encode()
	if err != nil {
		return
	}
	h.broadcastRoom(roomID, frame, "", true)
}

// broadcastRoom 将消息发送给指定房间的参与者。
// exclude 非空时跳过该参与者;bypassGate 控制是否绕过回放门控。
func (h *Hub) broadcastRoom(roomID string, message []byte, exclude string, bypassGate bool) {
	h.broadcastTo(h.reg.Participants(roomID), message, exclude, bypassGate)
}

func (h *Hub) broadcastTo(participantIDs []string, message []byte, exclude string, bypassGate bool) {
	for _, id := range participantIDs {
		if id == exclude {
			continue
		}
		client, ok := h.clients[id]
		if !ok {
			continue
		}
		if client.gated && !bypassGate {
			// 回放尚未送达,缓存实时帧保证先回放后实时的送达顺序
			if len(client.pending) < maxPendingFrames {
				client.pending = append(client.pending, message)
			} else {
				logrus.WithField("participant_id", id).Warn("Pending frame buffer full during replay, dropping frame")
			}
			continue
		}
		client.trySend(message)
	}
}

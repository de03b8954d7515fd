package service

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/dto"
)

// Scope 表示一次转发的扇出范围。
type Scope int

const (
	// ScopeNone 表示不转发（事件被丢弃或仅持久化）。
	ScopeNone Scope = iota
	// ScopeOthers 表示转发给房间内除发送者外的所有参与者。
	ScopeOthers
	// ScopeAll 表示转发给房间内包括发送者在内的所有参与者。
	ScopeAll
)

// Decision 是中继对一条入站事件的处理结果：
// 转发范围 + 已经编码好的出站帧。持久化副作用在 Process 内部完成排队。
type Decision struct {
	Scope   Scope
	Message []byte
}

// RelayService 实现绘图事件的中继策略。每种事件的扇出范围是固定契约：
//
//	draw-start/move/end  -> 其他参与者（发送者本地已有笔画），持久化为 stroke
//	clear-canvas         -> 全部参与者（发送者也要重置到确定为空的画布），日志被替换
//	undo/redo-action     -> 其他参与者（决不回送发送者，防止通知循环），追加持久化
//	cursor-move          -> 其他参与者，不持久化（高频、回放无关）
//
// 入站事件引用的房间必须与参与者当前占用的房间一致，否则整条事件被丢弃
// 且不产生任何状态变更 —— 无法可靠区分恶意与迟到的客户端，一律不硬失败。
type RelayService struct {
	logSvc *CommandLogService
}

// NewRelayService 创建 RelayService 实例。
func NewRelayService(logSvc *CommandLogService) *RelayService {
	if logSvc == nil {
		panic("CommandLogService cannot be nil for RelayService")
	}
	return &RelayService{logSvc: logSvc}
}

// Process 处理一条入站绘图/光标/撤销事件。
// participantID 是发送者，currentRoom 是其当前占用的房间（由调用方从注册表解析）。
// 广播与持久化相互独立：返回的 Decision 立即可用于扇出，
// 持久化由日志服务异步完成，绝不拖延对其他在线参与者的投递。
func (s *RelayService) Process(participantID, currentRoom string, env dto.Envelope) (Decision, error) {
	switch env.Type {
	case dto.EventDrawStart:
		var p dto.DrawStartPayload
		if err := s.decode(env, currentRoom, &p, func() string { return p.RoomID }); err != nil {
			return Decision{}, err
		}
		cmd, err := domain.NewStrokeCommand(currentRoom, domain.StrokeData{
			Action:      domain.StrokeStart,
			X:           p.X,
			Y:           p.Y,
			Color:       p.Color,
			StrokeWidth: p.StrokeWidth,
			UserID:      participantID,
		})
		if err != nil {
			return Decision{}, err
		}
		s.logSvc.Append(cmd)
		return s.outbound(ScopeOthers, dto.EventDrawStart, dto.DrawStartPayload{
			X: p.X, Y: p.Y, Color: p.Color, StrokeWidth: p.StrokeWidth,
		})

	case dto.EventDrawMove:
		var p dto.DrawMovePayload
		if err := s.decode(env, currentRoom, &p, func() string { return p.RoomID }); err != nil {
			return Decision{}, err
		}
		cmd, err := domain.NewStrokeCommand(currentRoom, domain.StrokeData{
			Action: domain.StrokeMove,
			X:      p.X,
			Y:      p.Y,
			UserID: participantID,
		})
		if err != nil {
			return Decision{}, err
		}
		s.logSvc.Append(cmd)
		return s.outbound(ScopeOthers, dto.EventDrawMove, dto.DrawMovePayload{X: p.X, Y: p.Y})

	case dto.EventDrawEnd:
		var p dto.RoomOnlyPayload
		if err := s.decode(env, currentRoom, &p, func() string { return p.RoomID }); err != nil {
			return Decision{}, err
		}
		cmd, err := domain.NewStrokeCommand(currentRoom, domain.StrokeData{
			Action: domain.StrokeEnd,
			UserID: participantID,
		})
		if err != nil {
			return Decision{}, err
		}
		s.logSvc.Append(cmd)
		return s.outbound(ScopeOthers, dto.EventDrawEnd, nil)

	case dto.EventClear:
		var p dto.RoomOnlyPayload
		if err := s.decode(env, currentRoom, &p, func() string { return p.RoomID }); err != nil {
			return Decision{}, err
		}
		cmd, err := domain.NewMarkCommand(currentRoom, domain.CommandClear, participantID)
		if err != nil {
			return Decision{}, err
		}
		s.logSvc.ReplaceWithClear(cmd)
		return s.outbound(ScopeAll, dto.EventClear, nil)

	case dto.EventUndo, dto.EventRedo:
		var p dto.RoomOnlyPayload
		if err := s.decode(env, currentRoom, &p, func() string { return p.RoomID }); err != nil {
			return Decision{}, err
		}
		cmdType := domain.CommandUndo
		if env.Type == dto.EventRedo {
			cmdType = domain.CommandRedo
		}
		cmd, err := domain.NewMarkCommand(currentRoom, cmdType, participantID)
		if err != nil {
			return Decision{}, err
		}
		s.logSvc.Append(cmd)
		return s.outbound(ScopeOthers, env.Type, nil)

	case dto.EventCursorMove:
		var p dto.CursorMovePayload
		if err := s.decode(env, currentRoom, &p, func() string { return p.RoomID }); err != nil {
			return Decision{}, err
		}
		return s.outbound(ScopeOthers, dto.EventCursorMove, dto.CursorMovePayload{
			UserID: participantID, X: p.X, Y: p.Y,
		})

	default:
		logrus.WithFields(logrus.Fields{
			"participant_id": participantID,
			"event_type":     env.Type,
		}).Warn("Dropping event of unknown type")
		return Decision{}, ErrInvalidEvent
	}
}

// decode 解析 payload 并校验其房间引用。
func (s *RelayService) decode(env dto.Envelope, currentRoom string, out interface{}, roomOf func() string) error {
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return fmt.Errorf("%w: %s payload: %v", ErrInvalidEvent, env.Type, err)
	}
	claimed, err := NormalizeRoomCode(roomOf())
	if err != nil || claimed != currentRoom {
		return ErrRoomMismatch
	}
	return nil
}

func (s *RelayService) outbound(scope Scope, eventType string, payload interface{}) (Decision, error) {
	env, err := dto.NewEnvelope(eventType, payload)
	if err != nil {
		return Decision{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	msg, err := env.Encode()
	if err != nil {
		return Decision{}, fmt.Errorf("encode %s envelope: %w", eventType, err)
	}
	return Decision{Scope: scope, Message: msg}, nil
}

package dto

import (
	"encoding/json"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
)

// 事件类型常量，客户端与服务端共用。
const (
	// 客户端 -> 服务端
	EventJoinRoom   = "join-room"
	EventLeaveRoom  = "leave-room"
	EventDrawStart  = "draw-start"
	EventDrawMove   = "draw-move"
	EventDrawEnd    = "draw-end"
	EventClear      = "clear-canvas"
	EventUndo       = "undo-action"
	EventRedo       = "redo-action"
	EventCursorMove = "cursor-move"

	// 服务端 -> 客户端
	EventUserCount       = "user-count"
	EventUserLeft        = "user-left"
	EventLoadDrawingData = "load-drawing-data"
)

// Envelope 是 WebSocket 文本帧的统一外层结构。
// Payload 的具体形状由 Type 决定，延迟到分发时再解析。
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope 序列化 payload 并包入信封。
func NewEnvelope(eventType string, payload interface{}) (Envelope, error) {
	if payload == nil {
		return Envelope{Type: eventType}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: eventType, Payload: raw}, nil
}

// Encode 将信封序列化为待发送的文本帧。
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// JoinRoomPayload 同时用于 join-room 和 leave-room。
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type UserCountPayload struct {
	Count int `json:"count"`
}

type UserLeftPayload struct {
	UserID string `json:"userId"`
}

// DrawStartPayload 入站时带 RoomID；转发副本不带（接收方已限定在房间频道内）。
type DrawStartPayload struct {
	RoomID      string  `json:"roomId,omitempty"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type DrawMovePayload struct {
	RoomID string  `json:"roomId,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// RoomOnlyPayload 用于 draw-end / clear-canvas / undo-action / redo-action 的入站形态。
type RoomOnlyPayload struct {
	RoomID string `json:"roomId"`
}

// CursorMovePayload 入站带 RoomID，转发副本改带发送者的 UserID。
type CursorMovePayload struct {
	RoomID string  `json:"roomId,omitempty"`
	UserID string  `json:"userId,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// LoadDrawingDataPayload 仅在加入房间后发给加入者本人，回放全部历史命令。
type LoadDrawingDataPayload struct {
	Commands []domain.DrawingCommand `json:"commands"`
}

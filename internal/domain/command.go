package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// 命令类型。一个房间的命令日志由这四种命令按追加顺序组成。
const (
	CommandStroke = "stroke"
	CommandClear  = "clear"
	CommandUndo   = "undo"
	CommandRedo   = "redo"
)

// stroke 命令的子动作。
const (
	StrokeStart = "start"
	StrokeMove  = "move"
	StrokeEnd   = "end"
)

// DrawingCommand 表示房间命令日志中的一条持久化记录。
// 日志内的全序由追加顺序（自增主键）决定，Timestamp 只作参考，
// 不参与排序 —— 回放的正确性依赖追加顺序而不是挂钟时间。
type DrawingCommand struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	RoomID    string          `gorm:"index;size:8;not null" json:"-"`
	Type      string          `gorm:"size:16;not null" json:"type"`
	Data      json.RawMessage `gorm:"type:text;not null" json:"data"` // 具体数据，JSON 格式，结构随 Type 变化
	Timestamp time.Time       `gorm:"not null" json:"timestamp"`      // 服务端赋值
}

// StrokeData 是 stroke 命令的 Data 结构。
// Action 为 start 时带坐标和画笔属性，move 只带坐标，end 只带来源用户。
type StrokeData struct {
	Action      string  `json:"action"`
	X           float64 `json:"x,omitempty"`
	Y           float64 `json:"y,omitempty"`
	Color       string  `json:"color,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	UserID      string  `json:"userId"`
}

// MarkData 是 clear/undo/redo 命令的 Data 结构，只记录来源和时间。
type MarkData struct {
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStrokeCommand 构造一条 stroke 命令。
func NewStrokeCommand(roomID string, data StrokeData) (DrawingCommand, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return DrawingCommand{}, fmt.Errorf("marshal stroke data: %w", err)
	}
	return DrawingCommand{
		RoomID:    roomID,
		Type:      CommandStroke,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// NewMarkCommand 构造 clear/undo/redo 命令。
func NewMarkCommand(roomID, cmdType, userID string) (DrawingCommand, error) {
	now := time.Now().UTC()
	raw, err := json.Marshal(MarkData{UserID: userID, Timestamp: now})
	if err != nil {
		return DrawingCommand{}, fmt.Errorf("marshal mark data: %w", err)
	}
	return DrawingCommand{
		RoomID:    roomID,
		Type:      cmdType,
		Data:      raw,
		Timestamp: now,
	}, nil
}

// ParseStrokeData 将 Data 字段解析为 StrokeData。
func (c *DrawingCommand) ParseStrokeData() (StrokeData, error) {
	var data StrokeData
	if c.Type != CommandStroke {
		return data, fmt.Errorf("command type %s has no stroke data", c.Type)
	}
	if err := json.Unmarshal(c.Data, &data); err != nil {
		return data, fmt.Errorf("unmarshal stroke data: %w", err)
	}
	return data, nil
}

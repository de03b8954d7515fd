package tasks

import (
	"encoding/json"
)

// 定义任务类型常量
const (
	TypeRoomSweep = "room:sweep" // 闲置房间回收任务类型
)

// RoomSweepPayload 定义了闲置房间回收任务的数据结构
type RoomSweepPayload struct {
	// 房间允许的最大闲置时长（小时），超过即被回收
	MaxIdleHours int `json:"max_idle_hours"`
}

// NewRoomSweepTask 创建一个新的闲置房间回收任务 payload
func NewRoomSweepTask(maxIdleHours int) ([]byte, error) {
	payload := RoomSweepPayload{
		MaxIdleHours: maxIdleHours,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return payloadBytes, nil
}

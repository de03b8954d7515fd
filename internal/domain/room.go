package domain

import "time"

// Room 表示一个协作白板房间。
// RoomID 是对外的房间码（4-8 位大写字母数字），创建后不可变；
// LastActivity 随每次绘图/清空/撤销/重做操作单调递增，
// 后台清理任务据此回收超过 24 小时无活动的房间。
type Room struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	RoomID       string     `gorm:"uniqueIndex;size:8;not null" json:"roomId"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	LastActivity time.Time  `gorm:"index;not null" json:"lastActivity"`
	TotalStrokes uint       `gorm:"not null;default:0" json:"totalStrokes"` // 派生的笔画计数，随 stroke 命令累加
	LastClearAt  *time.Time `json:"lastClearAt,omitempty"`                  // 最近一次清空的时间，未清空过为 NULL
}

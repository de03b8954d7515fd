package repository

import (
	"context"
	"time"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
)

// RoomRepository 定义了房间文档的存储和检索操作。
type RoomRepository interface {
	// FindByRoomID 根据房间码查找房间。
	// 房间不存在时返回 repository.ErrRoomNotFound。
	FindByRoomID(ctx context.Context, roomID string) (*domain.Room, error)

	// Save 保存房间信息。已存在（基于主键）则更新，否则创建。
	Save(ctx context.Context, room *domain.Room) error

	// Touch 将房间的 last_activity 更新为 at。
	// 房间不存在时是 no-op，不报错 —— 实际的文档创建由追加路径隐式完成。
	Touch(ctx context.Context, roomID string, at time.Time) error

	// DeleteInactiveBefore 删除 last_activity 早于 cutoff 的全部房间，
	// 返回被删除的房间码，供调用者清理关联的命令日志和缓存。
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

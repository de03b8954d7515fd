package repository

import (
	"context"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
)

// CommandLogRepository 定义了房间命令日志的持久化操作。
// 日志是 per-room 的追加序列，追加顺序即回放顺序。
type CommandLogRepository interface {
	// Append 将命令追加到房间日志末尾，并更新房间的 last_activity
	// （stroke 命令同时累加 total_strokes）。房间文档不存在时隐式创建。
	Append(ctx context.Context, cmd *domain.DrawingCommand) error

	// ReplaceWithClear 原子地用单条 clear 命令替换房间的整个日志。
	// 清空在逻辑上作废了之前的全部笔画，保留它们只会浪费存储、
	// 并让新加入者回放出错误的画面。
	ReplaceWithClear(ctx context.Context, clear *domain.DrawingCommand) error

	// Load 按严格的追加顺序返回房间的完整命令序列；
	// 房间还没有任何命令时返回空序列（新房间的常态）。
	Load(ctx context.Context, roomID string) ([]domain.DrawingCommand, error)

	// DeleteForRooms 删除指定房间的全部命令（后台清理任务使用）。
	DeleteForRooms(ctx context.Context, roomIDs []string) error
}

// CommandCache 定义了命令日志的实时镜像（Redis 实现），
// 回放热点房间时走缓存，避免每次加入都读数据库。
// 缓存失效只影响性能，正确性始终以持久化日志为准。
type CommandCache interface {
	// Push 将命令追加到房间的缓存列表尾部。
	Push(ctx context.Context, cmd domain.DrawingCommand) error

	// ResetToClear 用单条 clear 命令重置房间的缓存列表。
	ResetToClear(ctx context.Context, clear domain.DrawingCommand) error

	// Load 返回房间的缓存命令序列；缓存未命中时返回 repository.ErrNotFound。
	Load(ctx context.Context, roomID string) ([]domain.DrawingCommand, error)

	// Warm 用持久化日志的内容填充缓存（缓存未命中后的回填）。
	Warm(ctx context.Context, roomID string, cmds []domain.DrawingCommand) error

	// Invalidate 删除指定房间的缓存键。
	Invalidate(ctx context.Context, roomIDs ...string) error
}

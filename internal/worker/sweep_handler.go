package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/registry"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/tasks"
)

const defaultMaxIdleHours = 24

// RoomSweepHandler 处理周期性的闲置房间回收任务：
// 删除超过闲置阈值的房间及其绘图日志，并使对应的缓存镜像失效。
// 有在线参与者的房间在回收前先刷新活跃时间,连接本身即是活跃信号。
type RoomSweepHandler struct {
	roomRepo repository.RoomRepository
	logRepo  repository.CommandLogRepository
	cache    repository.CommandCache
	reg      *registry.Registry
}

// NewRoomSweepHandler 创建 Handler 实例
func NewRoomSweepHandler(roomRepo repository.RoomRepository, logRepo repository.CommandLogRepository, cache repository.CommandCache, reg *registry.Registry) *RoomSweepHandler {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomSweepHandler")
	}
	if logRepo == nil {
		panic("CommandLogRepository cannot be nil for RoomSweepHandler")
	}
	if cache == nil {
		panic("CommandCache cannot be nil for RoomSweepHandler")
	}
	if reg == nil {
		panic("Registry cannot be nil for RoomSweepHandler")
	}
	return &RoomSweepHandler{roomRepo: roomRepo, logRepo: logRepo, cache: cache, reg: reg}
}

// ProcessTask 实现 asynq.Handler 接口
func (h *RoomSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithFields(logrus.Fields{
		"task_type": t.Type(),
		"operation": "ProcessTask",
	})
	logCtx.Info("Processing room sweep task...")

	var payload tasks.RoomSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal room sweep payload")
		return err
	}
	maxIdle := time.Duration(payload.MaxIdleHours) * time.Hour
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleHours * time.Hour
	}

	// 有在线参与者的房间不应被回收
	now := time.Now()
	for _, roomID := range h.reg.ActiveRooms() {
		if err := h.roomRepo.Touch(ctx, roomID, now); err != nil {
			logCtx.WithError(err).WithField("room_id", roomID).Warn("Failed to refresh activity for occupied room")
		}
	}

	cutoff := now.Add(-maxIdle)
	roomIDs, err := h.roomRepo.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		logCtx.WithError(err).Error("Failed to delete inactive rooms")
		return err
	}
	if len(roomIDs) == 0 {
		logCtx.Info("No inactive rooms to sweep")
		return nil
	}
	logCtx = logCtx.WithField("room_count", len(roomIDs))

	if err := h.logRepo.DeleteForRooms(ctx, roomIDs); err != nil {
		logCtx.WithError(err).Error("Failed to delete drawing logs for swept rooms")
		return err
	}
	if err := h.cache.Invalidate(ctx, roomIDs...); err != nil {
		// 缓存失效失败不致命:镜像键会随下一次 Warm 被覆盖
		logCtx.WithError(err).Warn("Failed to invalidate cache for swept rooms")
	}

	logCtx.Info("Room sweep completed")
	return nil
}

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
)

const (
	// 单个房间写入队列的深度。队列满说明持久化持续落后于实时流量，
	// 此时丢弃写入（实时广播已经完成，损失仅限该条命令的回放）。
	logQueueSize = 256

	// 房间写入协程空闲多久后退出，避免冷房间的协程堆积。
	writerIdleTimeout = 5 * time.Minute

	// 单次持久化写入的超时。
	writeTimeout = 10 * time.Second
)

// CommandLogService 是绘图命令日志的服务层。
// 写入路径是异步的：调用方（事件中继）把命令投入所属房间的 FIFO 队列后
// 立即返回，每个房间由专属协程按到达顺序串行落库 —— 同一房间的
// 日志变更绝不相互重排，不同房间的写入自由并行。
// 读取路径（回放）优先走 Redis 镜像，未命中时读库并回填。
type CommandLogService struct {
	repo  repository.CommandLogRepository
	cache repository.CommandCache

	mu      sync.Mutex
	writers map[string]chan logWrite
}

type logWrite struct {
	replace bool // true 表示 ReplaceWithClear
	cmd     domain.DrawingCommand
}

// NewCommandLogService 创建 CommandLogService 实例。
func NewCommandLogService(repo repository.CommandLogRepository, cache repository.CommandCache) *CommandLogService {
	if repo == nil {
		panic("CommandLogRepository cannot be nil for CommandLogService")
	}
	if cache == nil {
		panic("CommandCache cannot be nil for CommandLogService")
	}
	return &CommandLogService{
		repo:    repo,
		cache:   cache,
		writers: make(map[string]chan logWrite),
	}
}

// Append 将命令的持久化排入所属房间的写入队列，立即返回。
func (s *CommandLogService) Append(cmd domain.DrawingCommand) {
	s.enqueue(logWrite{cmd: cmd})
}

// ReplaceWithClear 将日志替换排入所属房间的写入队列，立即返回。
// 替换与普通追加走同一条队列，保证清空相对于前后命令的顺序。
func (s *CommandLogService) ReplaceWithClear(clear domain.DrawingCommand) {
	s.enqueue(logWrite{replace: true, cmd: clear})
}

// Load 按追加顺序返回房间的完整命令序列。
// 缓存命中直接返回镜像内容；未命中读持久化日志并回填镜像。
func (s *CommandLogService) Load(ctx context.Context, roomID string) ([]domain.DrawingCommand, error) {
	cmds, err := s.cache.Load(ctx, roomID)
	if err == nil {
		return cmds, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		// 缓存故障只降级，不失败
		logrus.WithField("room_id", roomID).WithError(err).Warn("Command cache load failed, falling back to repository")
	}

	cmds, err = s.repo.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(cmds) > 0 {
		if err := s.cache.Warm(ctx, roomID, cmds); err != nil {
			logrus.WithField("room_id", roomID).WithError(err).Warn("Failed to warm command cache")
		}
	}
	return cmds, nil
}

// enqueue 把写入投递到房间专属队列；队列满则丢弃并告警。
// 发送发生在持锁状态下，与写入协程的空闲退出检查互斥，
// 保证不会把消息投进一条已经没有消费者的队列。
func (s *CommandLogService) enqueue(w logWrite) {
	roomID := w.cmd.RoomID
	s.mu.Lock()
	ch, ok := s.writers[roomID]
	if !ok {
		ch = make(chan logWrite, logQueueSize)
		s.writers[roomID] = ch
		go s.drain(roomID, ch)
	}
	select {
	case ch <- w:
	default:
		logrus.WithFields(logrus.Fields{
			"room_id":      roomID,
			"command_type": w.cmd.Type,
		}).Warn("Room log queue full, dropping command persistence")
	}
	s.mu.Unlock()
}

// drain 是单个房间的写入协程：按到达顺序串行执行持久化和缓存镜像更新。
func (s *CommandLogService) drain(roomID string, ch chan logWrite) {
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "component": "log_writer"})
	idle := time.NewTimer(writerIdleTimeout)
	defer idle.Stop()

	for {
		select {
		case w := <-ch:
			s.write(w, logCtx)
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(writerIdleTimeout)
		case <-idle.C:
			s.mu.Lock()
			if len(ch) == 0 {
				delete(s.writers, roomID)
				s.mu.Unlock()
				logCtx.Debug("Room log writer exiting after idle period")
				return
			}
			// 超时与新写入撞车，继续消费
			s.mu.Unlock()
			idle.Reset(writerIdleTimeout)
		}
	}
}

// write 执行一次持久化写入。失败只记录：事件已经广播出去了，
// 持久化失败的代价是该条命令不出现在后续回放中，而不是实时丢失。
func (s *CommandLogService) write(w logWrite, logCtx *logrus.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if w.replace {
		if err := s.repo.ReplaceWithClear(ctx, &w.cmd); err != nil {
			logCtx.WithError(err).Error("Failed to replace command log with clear")
			return
		}
		if err := s.cache.ResetToClear(ctx, w.cmd); err != nil {
			logCtx.WithError(err).Warn("Failed to reset command cache after clear")
		}
		return
	}

	if err := s.repo.Append(ctx, &w.cmd); err != nil {
		logCtx.WithField("command_type", w.cmd.Type).WithError(err).Error("Failed to append command to log")
		return
	}
	if err := s.cache.Push(ctx, w.cmd); err != nil {
		logCtx.WithError(err).Warn("Failed to mirror command into cache")
	}
}

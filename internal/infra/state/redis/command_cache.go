package redisstate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
)

// RedisCommandCache 是 CommandCache 接口的 Redis 实现。
// 每个房间的命令日志镜像为一个 Redis list（追加 = RPUSH，清空 = DEL+RPUSH），
// 回放热点房间时直接 LRANGE，不必读数据库。
type RedisCommandCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCommandCache 创建 RedisCommandCache 实例
func NewRedisCommandCache(client *redis.Client, keyPrefix string) *RedisCommandCache {
	if client == nil {
		panic("redis client cannot be nil for RedisCommandCache")
	}
	if keyPrefix == "" {
		keyPrefix = "wb:" // 默认前缀 "wb:" (whiteboard)
	}
	return &RedisCommandCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisCommandCache) commandsKey(roomID string) string {
	return fmt.Sprintf("%sroom:%s:commands", c.keyPrefix, roomID)
}

// Push 将命令追加到房间的缓存列表尾部
func (c *RedisCommandCache) Push(ctx context.Context, cmd domain.DrawingCommand) error {
	key := c.commandsKey(cmd.RoomID)
	raw, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("redis: marshal command for room '%s': %w", cmd.RoomID, err)
	}
	// 只追加到已存在的镜像：键不存在说明镜像还没被 Warm 过，
	// 此时 RPUSH 会凭空造出一个不完整的列表，回放会丢掉更早的命令。
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redis: check commands key for room '%s': %w", cmd.RoomID, err)
	}
	if exists == 0 {
		return nil
	}
	if err := c.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("redis: push command for room '%s' on key %s: %w", cmd.RoomID, key, err)
	}
	return nil
}

// ResetToClear 用单条 clear 命令重置房间的缓存列表
func (c *RedisCommandCache) ResetToClear(ctx context.Context, clear domain.DrawingCommand) error {
	key := c.commandsKey(clear.RoomID)
	raw, err := json.Marshal(clear)
	if err != nil {
		return fmt.Errorf("redis: marshal clear command for room '%s': %w", clear.RoomID, err)
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, raw)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: reset commands for room '%s' on key %s: %w", clear.RoomID, key, err)
	}
	return nil
}

// Load 返回房间的缓存命令序列；键不存在时返回 repository.ErrNotFound
func (c *RedisCommandCache) Load(ctx context.Context, roomID string) ([]domain.DrawingCommand, error) {
	key := c.commandsKey(roomID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: check commands key for room '%s': %w", roomID, err)
	}
	if exists == 0 {
		return nil, repository.ErrNotFound
	}
	raws, err := c.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load commands for room '%s' from %s: %w", roomID, key, err)
	}
	cmds := make([]domain.DrawingCommand, 0, len(raws))
	for _, raw := range raws {
		var cmd domain.DrawingCommand
		if err := json.Unmarshal([]byte(raw), &cmd); err != nil {
			// 单条坏数据不应让整个回放走失败路径，记录后跳过
			logrus.WithFields(logrus.Fields{"room_id": roomID, "key": key}).
				WithError(err).Warn("Skipping unparsable cached command")
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Warm 用持久化日志的内容填充缓存
func (c *RedisCommandCache) Warm(ctx context.Context, roomID string, cmds []domain.DrawingCommand) error {
	key := c.commandsKey(roomID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	for i := range cmds {
		raw, err := json.Marshal(cmds[i])
		if err != nil {
			return fmt.Errorf("redis: marshal command %d for warm of room '%s': %w", i, roomID, err)
		}
		pipe.RPush(ctx, key, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: warm commands for room '%s' on key %s: %w", roomID, key, err)
	}
	return nil
}

// Invalidate 删除指定房间的缓存键
func (c *RedisCommandCache) Invalidate(ctx context.Context, roomIDs ...string) error {
	if len(roomIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(roomIDs))
	for _, id := range roomIDs {
		keys = append(keys, c.commandsKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: invalidate command cache for %d rooms: %w", len(roomIDs), err)
	}
	return nil
}

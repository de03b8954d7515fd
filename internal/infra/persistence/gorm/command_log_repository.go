package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
)

// GormCommandLogRepository 是 CommandLogRepository 接口的 GORM 实现。
// 追加顺序由 drawing_commands 表的自增主键保证，Load 按主键排序，
// 因此回放顺序与写入顺序严格一致。
type GormCommandLogRepository struct {
	db *gorm.DB
}

// NewGormCommandLogRepository 创建 GormCommandLogRepository 实例
func NewGormCommandLogRepository(db *gorm.DB) *GormCommandLogRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCommandLogRepository")
	}
	return &GormCommandLogRepository{db: db}
}

// Append 实现命令追加。插入命令和更新房间元数据在同一个事务内完成；
// 房间文档不存在时在这里隐式创建。
func (r *GormCommandLogRepository) Append(ctx context.Context, cmd *domain.DrawingCommand) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(cmd).Error; err != nil {
			return err
		}
		return r.bumpRoom(tx, cmd, false)
	})
	if err != nil {
		return fmt.Errorf("gorm: append %s command to room '%s': %w", cmd.Type, cmd.RoomID, err)
	}
	return nil
}

// ReplaceWithClear 实现日志替换：删除房间的全部命令后写入单条 clear。
func (r *GormCommandLogRepository) ReplaceWithClear(ctx context.Context, clear *domain.DrawingCommand) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", clear.RoomID).
			Delete(&domain.DrawingCommand{}).Error; err != nil {
			return err
		}
		if err := tx.Create(clear).Error; err != nil {
			return err
		}
		return r.bumpRoom(tx, clear, true)
	})
	if err != nil {
		return fmt.Errorf("gorm: replace log with clear for room '%s': %w", clear.RoomID, err)
	}
	return nil
}

// Load 实现按追加顺序读取房间的完整命令序列
func (r *GormCommandLogRepository) Load(ctx context.Context, roomID string) ([]domain.DrawingCommand, error) {
	var cmds []domain.DrawingCommand
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id asc").
		Find(&cmds).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: load command log for room '%s': %w", roomID, err)
	}
	return cmds, nil
}

// DeleteForRooms 实现批量删除房间的命令日志
func (r *GormCommandLogRepository) DeleteForRooms(ctx context.Context, roomIDs []string) error {
	if len(roomIDs) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Where("room_id IN ?", roomIDs).
		Delete(&domain.DrawingCommand{}).Error
	if err != nil {
		return fmt.Errorf("gorm: delete command logs for %d rooms: %w", len(roomIDs), err)
	}
	return nil
}

// bumpRoom 更新（必要时创建）命令所属的房间文档。
// clear 会重置 total_strokes 并记录 last_clear_at；stroke 累加计数。
func (r *GormCommandLogRepository) bumpRoom(tx *gorm.DB, cmd *domain.DrawingCommand, isClear bool) error {
	updates := map[string]interface{}{
		"last_activity": cmd.Timestamp,
	}
	if isClear {
		updates["total_strokes"] = 0
		updates["last_clear_at"] = cmd.Timestamp
	} else if cmd.Type == domain.CommandStroke {
		updates["total_strokes"] = gorm.Expr("total_strokes + 1")
	}

	res := tx.Model(&domain.Room{}).Where("room_id = ?", cmd.RoomID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// 房间文档尚不存在，隐式创建
	room := domain.Room{
		RoomID:       cmd.RoomID,
		LastActivity: cmd.Timestamp,
	}
	if isClear {
		room.LastClearAt = &cmd.Timestamp
	} else if cmd.Type == domain.CommandStroke {
		room.TotalStrokes = 1
	}
	if err := tx.Create(&room).Error; err != nil {
		// 与并发创建撞车时退回到更新
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return tx.Model(&domain.Room{}).Where("room_id = ?", cmd.RoomID).Updates(updates).Error
		}
		return err
	}
	return nil
}

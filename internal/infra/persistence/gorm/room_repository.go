package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
)

// GormRoomRepository 是 RoomRepository 接口的 GORM 实现
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository 创建 GormRoomRepository 实例
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// FindByRoomID 实现根据房间码查找房间
func (r *GormRoomRepository) FindByRoomID(ctx context.Context, roomID string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by room_id '%s': %w", roomID, err)
	}
	return &room, nil
}

// Save 实现保存房间信息（创建或更新）
func (r *GormRoomRepository) Save(ctx context.Context, room *domain.Room) error {
	err := r.db.WithContext(ctx).Save(room).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save room '%s': %w", room.RoomID, err)
	}
	return nil
}

// Touch 实现更新房间的 last_activity；房间不存在时是 no-op
func (r *GormRoomRepository) Touch(ctx context.Context, roomID string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("room_id = ?", roomID).
		Update("last_activity", at).Error
	if err != nil {
		return fmt.Errorf("gorm: touch room '%s': %w", roomID, err)
	}
	return nil
}

// DeleteInactiveBefore 实现删除 last_activity 早于 cutoff 的房间并返回它们的房间码
func (r *GormRoomRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var roomIDs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Room{}).
			Where("last_activity < ?", cutoff).
			Pluck("room_id", &roomIDs).Error; err != nil {
			return err
		}
		if len(roomIDs) == 0 {
			return nil
		}
		return tx.Where("room_id IN ?", roomIDs).Delete(&domain.Room{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("gorm: delete rooms inactive before %v: %w", cutoff, err)
	}
	return roomIDs, nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
)

// RoomService 负责房间文档相关的业务逻辑：房间码校验、
// 加入时的隐式创建、活跃时间维护。
type RoomService struct {
	roomRepo repository.RoomRepository
}

// NewRoomService 创建 RoomService 实例。
func NewRoomService(roomRepo repository.RoomRepository) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	return &RoomService{roomRepo: roomRepo}
}

// NormalizeRoomCode 校验并规范化房间码：去除首尾空白、长度 [4,8]、
// 仅字母数字，统一转为大写。校验失败返回 ErrInvalidRoomCode，
// 校验错误不产生任何状态变更。
func NormalizeRoomCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) < 4 || len(code) > 8 {
		return "", ErrInvalidRoomCode
	}
	for _, r := range code {
		isDigit := r >= '0' && r <= '9'
		isLower := r >= 'a' && r <= 'z'
		isUpper := r >= 'A' && r <= 'Z'
		if !isDigit && !isLower && !isUpper {
			return "", ErrInvalidRoomCode
		}
	}
	return strings.ToUpper(code), nil
}

// JoinRoom 处理 REST 的加入请求：房间不存在则创建，存在则刷新 last_activity。
// 返回规范化后的房间文档。
func (s *RoomService) JoinRoom(ctx context.Context, code string) (*domain.Room, error) {
	roomID, err := NormalizeRoomCode(code)
	if err != nil {
		return nil, err
	}
	logCtx := logrus.WithField("room_id", roomID)

	room, err := s.roomRepo.FindByRoomID(ctx, roomID)
	if err != nil {
		if !errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.WithError(err).Error("JoinRoom: failed to look up room")
			return nil, ErrInternalServer
		}
		room = &domain.Room{RoomID: roomID, LastActivity: time.Now().UTC()}
		if err := s.roomRepo.Save(ctx, room); err != nil {
			if errors.Is(err, repository.ErrDuplicateEntry) {
				// 并发加入同一个新房间，读回赢家写入的文档
				room, err = s.roomRepo.FindByRoomID(ctx, roomID)
				if err != nil {
					logCtx.WithError(err).Error("JoinRoom: failed to re-read room after duplicate create")
					return nil, ErrInternalServer
				}
				return room, nil
			}
			logCtx.WithError(err).Error("JoinRoom: failed to create room")
			return nil, ErrInternalServer
		}
		logCtx.Info("Room created on first join")
		return room, nil
	}

	room.LastActivity = time.Now().UTC()
	if err := s.roomRepo.Save(ctx, room); err != nil {
		logCtx.WithError(err).Error("JoinRoom: failed to refresh room activity")
		return nil, ErrInternalServer
	}
	return room, nil
}

// GetRoom 返回房间文档，不存在时返回 ErrRoomNotFound。
func (s *RoomService) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	roomID, err := NormalizeRoomCode(code)
	if err != nil {
		return nil, err
	}
	room, err := s.roomRepo.FindByRoomID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithField("room_id", roomID).WithError(err).Error("GetRoom: repository error")
		return nil, ErrInternalServer
	}
	return room, nil
}

// TouchRoom 刷新房间的 last_activity；WebSocket 加入路径使用。
// 房间不存在时交给追加路径隐式创建，这里不报错。
func (s *RoomService) TouchRoom(ctx context.Context, roomID string) {
	if err := s.roomRepo.Touch(ctx, roomID, time.Now().UTC()); err != nil {
		logrus.WithField("room_id", roomID).WithError(err).Warn("TouchRoom: failed to bump activity")
	}
}

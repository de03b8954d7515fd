// internal/service/room_test.go
package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository/mocks"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/service"
)

// --- 测试 NormalizeRoomCode ---

func TestNormalizeRoomCode(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"小写转大写", "ab12cd", "AB12CD", nil},
		{"已是大写", "ROOM42", "ROOM42", nil},
		{"去除首尾空白", "  ab12  ", "AB12", nil},
		{"最短四位", "a1b2", "A1B2", nil},
		{"最长八位", "abcd1234", "ABCD1234", nil},
		{"过短", "abc", "", service.ErrInvalidRoomCode},
		{"过长", "abcd12345", "", service.ErrInvalidRoomCode},
		{"含非法字符", "ab-12", "", service.ErrInvalidRoomCode},
		{"含空格", "ab 12", "", service.ErrInvalidRoomCode},
		{"空字符串", "", "", service.ErrInvalidRoomCode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.NormalizeRoomCode(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr, "应返回房间码校验错误")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "规范化结果不符")
		})
	}
}

// --- 测试 JoinRoom 方法 ---

func TestRoomService_JoinRoom_CreatesWhenMissing(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()

	// 房间尚不存在
	mockRoomRepo.On("FindByRoomID", ctx, "AB12CD").
		Return(nil, repository.ErrRoomNotFound).
		Once()
	// 创建成功，模拟数据库填充主键
	mockRoomRepo.On("Save", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		assert.Equal(t, "AB12CD", room.RoomID, "应以规范化的房间码创建")
		assert.False(t, room.LastActivity.IsZero(), "创建时应设置活跃时间")
		return true
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Room).ID = 7
		}).
		Return(nil).
		Once()

	// Act: 小写输入应被规范化
	room, err := roomService.JoinRoom(ctx, "ab12cd")

	// Assert
	require.NoError(t, err, "首次加入不应失败")
	require.NotNil(t, room)
	assert.Equal(t, uint(7), room.ID)
	assert.Equal(t, "AB12CD", room.RoomID)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_RefreshesExisting(t *testing.T) {
	// Arrange
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()
	stale := time.Now().Add(-2 * time.Hour).UTC()

	mockRoomRepo.On("FindByRoomID", ctx, "AB12CD").
		Return(&domain.Room{ID: 3, RoomID: "AB12CD", LastActivity: stale}, nil).
		Once()
	mockRoomRepo.On("Save", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		return room.LastActivity.After(stale)
	})).
		Return(nil).
		Once()

	// Act
	room, err := roomService.JoinRoom(ctx, "AB12CD")

	// Assert
	require.NoError(t, err)
	assert.True(t, room.LastActivity.After(stale), "重复加入应刷新活跃时间")
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_DuplicateCreateRace(t *testing.T) {
	// Arrange: 两个参与者同时首次加入，本方的创建输给了对方
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()
	winner := &domain.Room{ID: 9, RoomID: "AB12CD", LastActivity: time.Now().UTC()}

	mockRoomRepo.On("FindByRoomID", ctx, "AB12CD").
		Return(nil, repository.ErrRoomNotFound).
		Once()
	mockRoomRepo.On("Save", ctx, mock.Anything).
		Return(repository.ErrDuplicateEntry).
		Once()
	// 失败后读回赢家写入的文档
	mockRoomRepo.On("FindByRoomID", ctx, "AB12CD").
		Return(winner, nil).
		Once()

	// Act
	room, err := roomService.JoinRoom(ctx, "AB12CD")

	// Assert
	require.NoError(t, err, "创建竞争不应向调用方暴露错误")
	assert.Equal(t, uint(9), room.ID, "应返回赢家创建的房间文档")
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_InvalidCode(t *testing.T) {
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)

	room, err := roomService.JoinRoom(context.Background(), "xy")

	assert.ErrorIs(t, err, service.ErrInvalidRoomCode, "非法房间码应被拒绝")
	assert.Nil(t, room)
	// 校验失败不应触及仓储
	mockRoomRepo.AssertNotCalled(t, "FindByRoomID", mock.Anything, mock.Anything)
	mockRoomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// --- 测试 GetRoom 方法 ---

func TestRoomService_GetRoom_NotFound(t *testing.T) {
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()

	mockRoomRepo.On("FindByRoomID", ctx, "AB12CD").
		Return(nil, repository.ErrRoomNotFound).
		Once()

	room, err := roomService.GetRoom(ctx, "AB12CD")

	assert.ErrorIs(t, err, service.ErrRoomNotFound, "查询不存在的房间应返回业务错误")
	assert.Nil(t, room)
	mockRoomRepo.AssertExpectations(t)
}

func TestRoomService_GetRoom_RepositoryError(t *testing.T) {
	mockRoomRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRoomRepo)
	ctx := context.Background()

	mockRoomRepo.On("FindByRoomID", ctx, "AB12CD").
		Return(nil, errors.New("connection refused")).
		Once()

	room, err := roomService.GetRoom(ctx, "AB12CD")

	assert.ErrorIs(t, err, service.ErrInternalServer, "基础设施错误应映射为内部错误")
	assert.Nil(t, room)
	mockRoomRepo.AssertExpectations(t)
}

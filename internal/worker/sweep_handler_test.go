// internal/worker/sweep_handler_test.go
package worker

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/registry"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository/mocks"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/tasks"
)

func sweepTask(t *testing.T, maxIdleHours int) *asynq.Task {
	t.Helper()
	payload, err := tasks.NewRoomSweepTask(maxIdleHours)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeRoomSweep, payload)
}

func TestRoomSweepHandler_DeletesIdleRoomsAndArtifacts(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	roomRepo.On("DeleteInactiveBefore", mock.Anything, mock.Anything).
		Return([]string{"AB12CD", "EF34GH"}, nil).Once()

	logRepo := new(mocks.CommandLogRepository)
	logRepo.On("DeleteForRooms", mock.Anything, []string{"AB12CD", "EF34GH"}).
		Return(nil).Once()

	cache := new(mocks.CommandCache)
	cache.On("Invalidate", mock.Anything, []string{"AB12CD", "EF34GH"}).
		Return(nil).Once()

	handler := NewRoomSweepHandler(roomRepo, logRepo, cache, registry.New())
	err := handler.ProcessTask(context.Background(), sweepTask(t, 24))

	require.NoError(t, err, "回收任务应成功")
	roomRepo.AssertExpectations(t)
	logRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRoomSweepHandler_TouchesOccupiedRoomsFirst(t *testing.T) {
	reg := registry.New()
	reg.Join("user-a", "QQ12WW")

	roomRepo := new(mocks.RoomRepository)
	// 有在线参与者的房间先被续活,再执行删除
	roomRepo.On("Touch", mock.Anything, "QQ12WW", mock.Anything).Return(nil).Once()
	roomRepo.On("DeleteInactiveBefore", mock.Anything, mock.Anything).
		Return(nil, nil).Once()

	handler := NewRoomSweepHandler(roomRepo, new(mocks.CommandLogRepository), new(mocks.CommandCache), reg)
	err := handler.ProcessTask(context.Background(), sweepTask(t, 24))

	require.NoError(t, err)
	roomRepo.AssertExpectations(t)
}

func TestRoomSweepHandler_NothingToSweep(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	roomRepo.On("DeleteInactiveBefore", mock.Anything, mock.Anything).
		Return(nil, nil).Once()

	logRepo := new(mocks.CommandLogRepository)
	cache := new(mocks.CommandCache)

	handler := NewRoomSweepHandler(roomRepo, logRepo, cache, registry.New())
	err := handler.ProcessTask(context.Background(), sweepTask(t, 24))

	require.NoError(t, err)
	logRepo.AssertNotCalled(t, "DeleteForRooms", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

// internal/handler/http/room_test.go
package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	httpHandler "github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/handler/http"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/registry"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/repository/mocks"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/service"
)

func newRouter(roomRepo *mocks.RoomRepository, logRepo *mocks.CommandLogRepository, cache *mocks.CommandCache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := httpHandler.NewRoomHandler(
		service.NewRoomService(roomRepo),
		service.NewCommandLogService(logRepo, cache),
		registry.New(),
	)
	router := gin.New()
	api := router.Group("/api/rooms")
	api.POST("/join", handler.JoinRoom)
	api.GET("/:roomId", handler.GetRoom)
	return router
}

func missOnlyCache() *mocks.CommandCache {
	cache := new(mocks.CommandCache)
	cache.On("Load", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound).Maybe()
	cache.On("Warm", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return cache
}

func TestRoomHandler_JoinRoom_CreatesAndReturnsDrawingData(t *testing.T) {
	// Arrange
	roomRepo := new(mocks.RoomRepository)
	roomRepo.On("FindByRoomID", mock.Anything, "AB12CD").
		Return(nil, repository.ErrRoomNotFound).Once()
	roomRepo.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Room).ID = 1 }).
		Return(nil).Once()

	stroke, err := domain.NewStrokeCommand("AB12CD", domain.StrokeData{
		Action: domain.StrokeStart, X: 1, Y: 2, Color: "#000000", StrokeWidth: 1, UserID: "user-x",
	})
	require.NoError(t, err)
	logRepo := new(mocks.CommandLogRepository)
	logRepo.On("Load", mock.Anything, "AB12CD").
		Return([]domain.DrawingCommand{stroke}, nil).Once()

	router := newRouter(roomRepo, logRepo, missOnlyCache())

	// Act: 小写房间码也应被接受
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{"roomId":"ab12cd"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code, "加入房间应成功")
	var resp httpHandler.JoinRoomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "AB12CD", resp.RoomID, "响应应返回规范化的房间码")
	assert.Len(t, resp.DrawingData, 1, "响应应携带既有绘图日志")
	roomRepo.AssertExpectations(t)
	logRepo.AssertExpectations(t)
}

func TestRoomHandler_JoinRoom_InvalidCode(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	router := newRouter(roomRepo, new(mocks.CommandLogRepository), missOnlyCache())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{"roomId":"xy"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "过短的房间码应返回 400")
	roomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomHandler_JoinRoom_MissingBody(t *testing.T) {
	router := newRouter(new(mocks.RoomRepository), new(mocks.CommandLogRepository), missOnlyCache())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/rooms/join", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code, "缺少 roomId 应返回 400")
}

func TestRoomHandler_GetRoom_NotFound(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	roomRepo.On("FindByRoomID", mock.Anything, "AB12CD").
		Return(nil, repository.ErrRoomNotFound).Once()
	router := newRouter(roomRepo, new(mocks.CommandLogRepository), missOnlyCache())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/AB12CD", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code, "查询不存在的房间应返回 404,不隐式创建")
	roomRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRoomHandler_GetRoom_ReturnsMetadata(t *testing.T) {
	roomRepo := new(mocks.RoomRepository)
	roomRepo.On("FindByRoomID", mock.Anything, "AB12CD").
		Return(&domain.Room{ID: 1, RoomID: "AB12CD", TotalStrokes: 5}, nil).Once()
	logRepo := new(mocks.CommandLogRepository)
	logRepo.On("Load", mock.Anything, "AB12CD").
		Return(nil, nil).Once()
	router := newRouter(roomRepo, logRepo, missOnlyCache())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/rooms/ab12cd", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp httpHandler.RoomInfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "AB12CD", resp.RoomID)
	assert.Equal(t, uint(5), resp.TotalStrokes)
	assert.Equal(t, 0, resp.ActiveUsers, "无连接时在线人数为 0")
}

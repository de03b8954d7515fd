package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/domain"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/registry"
	"github.com/MUKESHKUSHWAHA41866/collaborative-whiteboard/internal/service"
)

// RoomHandler 封装了与房间管理相关的 HTTP 处理逻辑
type RoomHandler struct {
	roomService *service.RoomService
	logService  *service.CommandLogService
	registry    *registry.Registry
}

// NewRoomHandler 创建 RoomHandler 实例
func NewRoomHandler(roomService *service.RoomService, logService *service.CommandLogService, reg *registry.Registry) *RoomHandler {
	if roomService == nil {
		panic("RoomService cannot be nil for RoomHandler")
	}
	if logService == nil {
		panic("CommandLogService cannot be nil for RoomHandler")
	}
	if reg == nil {
		panic("Registry cannot be nil for RoomHandler")
	}
	return &RoomHandler{roomService: roomService, logService: logService, registry: reg}
}

// JoinRoomRequest 定义加入房间请求的结构体
type JoinRoomRequest struct {
	RoomID string `json:"roomId" binding:"required"`
}

// JoinRoomResponse 定义加入房间成功的响应结构体
type JoinRoomResponse struct {
	Success     bool                    `json:"success"`
	RoomID      string                  `json:"roomId"`
	DrawingData []domain.DrawingCommand `json:"drawingData"`
}

// JoinRoom 处理加入(或创建)房间的请求。
// 房间码不合法返回 400;房间不存在时创建,因此成功路径不会返回 404。
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.JoinRoom: Invalid input format")
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: roomId is required")
		return
	}
	logCtx := logrus.WithField("room_code", req.RoomID)

	room, err := h.roomService.JoinRoom(c.Request.Context(), req.RoomID)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.JoinRoom: Failed to join room via service")
		HandleServiceError(c, err)
		return
	}

	commands, err := h.logService.Load(c.Request.Context(), room.RoomID)
	if err != nil {
		logCtx.WithError(err).Error("Handler.JoinRoom: Failed to load drawing data")
		// 房间本身已就绪,回放数据缺失不应导致加入失败
		commands = nil
	}

	logCtx.WithFields(logrus.Fields{
		"room_id":       room.RoomID,
		"command_count": len(commands),
	}).Info("Handler.JoinRoom: Room joined successfully")
	SuccessResponse(c, http.StatusOK, JoinRoomResponse{
		Success:     true,
		RoomID:      room.RoomID,
		DrawingData: commands,
	})
}

// RoomInfoResponse 定义房间详情的响应结构体
type RoomInfoResponse struct {
	RoomID       string                  `json:"roomId"`
	CreatedAt    string                  `json:"createdAt"`
	LastActivity string                  `json:"lastActivity"`
	TotalStrokes uint                    `json:"totalStrokes"`
	ActiveUsers  int                     `json:"activeUsers"`
	DrawingData  []domain.DrawingCommand `json:"drawingData"`
}

// GetRoom 处理查询房间详情的请求。房间不存在时返回 404,不隐式创建。
func (h *RoomHandler) GetRoom(c *gin.Context) {
	code := c.Param("roomId")
	logCtx := logrus.WithField("room_code", code)

	room, err := h.roomService.GetRoom(c.Request.Context(), code)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.GetRoom: Failed to get room via service")
		HandleServiceError(c, err)
		return
	}

	commands, err := h.logService.Load(c.Request.Context(), room.RoomID)
	if err != nil {
		logCtx.WithError(err).Error("Handler.GetRoom: Failed to load drawing data")
		commands = nil
	}

	SuccessResponse(c, http.StatusOK, RoomInfoResponse{
		RoomID:       room.RoomID,
		CreatedAt:    room.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		LastActivity: room.LastActivity.Format("2006-01-02T15:04:05Z07:00"),
		TotalStrokes: room.TotalStrokes,
		ActiveUsers:  h.registry.Count(room.RoomID),
		DrawingData:  commands,
	})
}

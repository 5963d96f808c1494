package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/roomcast/roomcast-server/internal/core"
	"github.com/roomcast/roomcast-server/internal/history"
	"github.com/roomcast/roomcast-server/internal/proto"
)

// RoomHandlers provides read-only HTTP handlers for inspecting rooms
// and their history.
type RoomHandlers struct {
	hub   *core.Hub
	store history.Store
	log   *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, store history.Store, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub:   hub,
		store: store,
		log:   logger,
	}
}

// RoomResponse represents one active room in API responses.
type RoomResponse struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// ListRooms returns the active rooms with live member counts.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	infos, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to snapshot rooms")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := lo.Map(infos, func(info core.RoomInfo, _ int) RoomResponse {
		return RoomResponse{Name: info.Name, Members: info.Members}
	})
	c.JSON(http.StatusOK, response)
}

// RoomMessages returns a room's persisted history in stored order.
// GET /api/rooms/:room/messages?limit=N
func (h *RoomHandlers) RoomMessages(c *gin.Context) {
	room := c.Param("room")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	msgs, err := h.store.Replay(c.Request.Context(), room, limit)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("failed to query history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := lo.Map(msgs, func(msg core.Message, _ int) proto.MessageData {
		return proto.MessageData{Username: msg.From, Text: msg.Text, Time: msg.Time}
	})
	c.JSON(http.StatusOK, response)
}

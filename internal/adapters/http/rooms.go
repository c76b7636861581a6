package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Estimate/internal/adapters/signal"
	"github.com/dkeye/Estimate/internal/app/orch"
	"github.com/dkeye/Estimate/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type roomHandlers struct {
	orch *orch.Orchestrator
}

type createRoomRequest struct {
	Name string `json:"name" binding:"displayname"`
	Role string `json:"role" binding:"omitempty,role"`
	Mode string `json:"mode" binding:"omitempty,mode"`
}

type createRoomResponse struct {
	RoomID        domain.RoomID        `json:"roomId"`
	ParticipantID domain.ParticipantID `json:"participantId"`
	Mode          domain.Mode          `json:"mode"`
}

func (h *roomHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.orch.ListRooms()})
}

func (h *roomHandlers) check(c *gin.Context) {
	id := domain.NormalizeRoomID(c.Param("id"))
	info, err := h.orch.CheckRoom(id)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"exists": false, "roomId": id})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": signal.ErrorCode(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exists":       true,
		"roomId":       info.ID,
		"mode":         info.Mode,
		"phase":        info.Phase,
		"participants": info.Participants,
		"connected":    info.Connected,
	})
}

func (h *roomHandlers) create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug().Err(err).Str("module", "adapters.http").Msg("bad create room request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}
	roomID, host, err := h.orch.CreateRoom(req.Name, req.Role, req.Mode)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrCodeSpaceExhausted) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": signal.ErrorCode(err)})
		return
	}
	mode := domain.ParseMode(req.Mode)
	c.JSON(http.StatusCreated, createRoomResponse{RoomID: roomID, ParticipantID: host.ID, Mode: mode})
}

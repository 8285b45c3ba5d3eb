package handler

import (
	"net/http"

	"github.com/blindmatch/backend/internal/usecase/orchestrator"
	"github.com/gin-gonic/gin"
)

type BatchHandler struct {
	orchestrator *orchestrator.Service
}

func NewBatchHandler(orchestrator *orchestrator.Service) *BatchHandler {
	return &BatchHandler{orchestrator: orchestrator}
}

// RunInvites triggers the evening availability invite batch.
func (h *BatchHandler) RunInvites(c *gin.Context) {
	result, err := h.orchestrator.RunInvites(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "invite batch failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunProposals triggers the match proposal batch.
func (h *BatchHandler) RunProposals(c *gin.Context) {
	result, err := h.orchestrator.RunProposals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "proposal batch failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

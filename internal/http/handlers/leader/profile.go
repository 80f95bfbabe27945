package leader

import (
	"github.com/groupbuy-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetProfile 当前团长资料
func (h *Handler) GetProfile(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	leader, err := h.LeaderService.Profile(principal)
	if err != nil {
		respondServiceError(c, err, "error.leader_fetch_failed")
		return
	}
	response.Success(c, leader)
}

// GetStats 当前团长经营概览
func (h *Handler) GetStats(c *gin.Context) {
	principal, ok := getLeaderPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.LeaderService.Stats(principal, principal.LeaderID)
	if err != nil {
		respondServiceError(c, err, "error.leader_fetch_failed")
		return
	}
	response.Success(c, stats)
}

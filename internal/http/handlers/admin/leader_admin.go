package admin

import (
	"encoding/json"
	"strings"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/repository"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateLeaderRequest 创建团长请求
type CreateLeaderRequest struct {
	Username       string       `json:"username" binding:"required"`
	Password       string       `json:"password" binding:"required"`
	Name           string       `json:"name" binding:"required"`
	Phone          string       `json:"phone" binding:"required"`
	CommunityID    *uint        `json:"community_id"`
	CommissionRate *json.Number `json:"commission_rate" binding:"omitempty,decimal2"`
}

// UpdateLeaderRequest 更新团长请求，缺省字段不修改
type UpdateLeaderRequest struct {
	Name           *string      `json:"name"`
	Phone          *string      `json:"phone"`
	CommunityID    *uint        `json:"community_id"`
	CommissionRate *json.Number `json:"commission_rate" binding:"omitempty,decimal2"`
}

// UpdateLeaderStatusRequest 启用/禁用团长
type UpdateLeaderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// ListLeaders 团长列表
func (h *Handler) ListLeaders(c *gin.Context) {
	page, pageSize := handlershared.ParsePageQuery(c)
	leaders, total, err := h.LeaderService.List(repository.LeaderListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Status:      strings.TrimSpace(c.Query("status")),
		CommunityID: handlershared.ParseQueryUint(c, "community_id"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.leader_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, leaders, response.BuildPagination(page, pageSize, total))
}

// GetLeader 团长详情
func (h *Handler) GetLeader(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	leader, err := h.LeaderService.Get(id)
	if err != nil {
		respondServiceError(c, err, "error.leader_fetch_failed")
		return
	}
	response.Success(c, leader)
}

// CreateLeader 创建团长账号
func (h *Handler) CreateLeader(c *gin.Context) {
	var req CreateLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, ok := handlershared.ParseOptionalMoneyNumber(req.CommissionRate)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	leader, err := h.LeaderService.Create(service.LeaderCreateInput{
		Username:       req.Username,
		Password:       req.Password,
		Name:           req.Name,
		Phone:          req.Phone,
		CommunityID:    req.CommunityID,
		CommissionRate: rate,
	})
	if err != nil {
		respondServiceError(c, err, "error.leader_save_failed")
		return
	}
	response.Success(c, leader)
}

// UpdateLeader 更新团长资料
func (h *Handler) UpdateLeader(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, ok := handlershared.ParseOptionalMoneyNumber(req.CommissionRate)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		return
	}

	leader, err := h.LeaderService.Update(id, service.LeaderUpdateInput{
		Name:           req.Name,
		Phone:          req.Phone,
		CommunityID:    req.CommunityID,
		CommissionRate: rate,
	})
	if err != nil {
		respondServiceError(c, err, "error.leader_save_failed")
		return
	}
	response.Success(c, leader)
}

// UpdateLeaderStatus 启用/禁用团长
func (h *Handler) UpdateLeaderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateLeaderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	leader, err := h.LeaderService.UpdateStatus(id, req.Status)
	if err != nil {
		respondServiceError(c, err, "error.leader_save_failed")
		return
	}
	response.Success(c, leader)
}

// GetLeaderStats 单个团长经营概览
func (h *Handler) GetLeaderStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	stats, err := h.LeaderService.Stats(principal, id)
	if err != nil {
		respondServiceError(c, err, "error.leader_fetch_failed")
		return
	}
	response.Success(c, stats)
}

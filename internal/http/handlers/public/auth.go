package public

import (
	"time"

	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/models"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string         `json:"token"`
	User      *models.User   `json:"user"`
	Leader    *models.Leader `json:"leader,omitempty"`
	ExpiresAt string         `json:"expires_at"`
}

// MeResponse 当前登录账号
type MeResponse struct {
	User   *models.User   `json:"user"`
	Leader *models.Leader `json:"leader,omitempty"`
}

// Login 用户名密码登录，签发携带角色与团长 ID 的 JWT
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	handlershared.RequestLog(c).Infow("auth_login_succeeded",
		"user_id", result.User.ID,
		"role", result.User.Role,
		"client_ip", c.ClientIP(),
	)
	response.Success(c, LoginResponse{
		Token:     result.Token,
		User:      result.User,
		Leader:    result.Leader,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

// Me 当前登录账号信息
func (h *Handler) Me(c *gin.Context) {
	principal, ok := handlershared.GetPrincipal(c)
	if !ok {
		return
	}
	user, leader, err := h.AuthService.Me(principal)
	if err != nil {
		respondServiceError(c, err, "error.internal")
		return
	}
	response.Success(c, MeResponse{User: user, Leader: leader})
}

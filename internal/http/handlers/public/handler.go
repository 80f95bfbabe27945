package public

import "github.com/groupbuy-next/internal/provider"

// Handler 公开与通用登录态接口处理器入口
// 说明：登录无需鉴权，/me 对管理员和团长都开放。
type Handler struct {
	*provider.Container
}

// New 创建公开接口处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

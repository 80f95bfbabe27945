package router

import (
	"sort"
	"strings"

	"github.com/groupbuy-next/internal/authz"
	"github.com/groupbuy-next/internal/cache"
	"github.com/groupbuy-next/internal/config"
	adminhandlers "github.com/groupbuy-next/internal/http/handlers/admin"
	leaderhandlers "github.com/groupbuy-next/internal/http/handlers/leader"
	publichandlers "github.com/groupbuy-next/internal/http/handlers/public"
	handlershared "github.com/groupbuy-next/internal/http/handlers/shared"
	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	registerBindingValidators()
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	leaderHandler := leaderhandlers.New(c)
	loginRule := NewRateLimitRule(cfg.Redis.Prefix, "login", cfg.Security.LoginRateLimit, "error.login_too_many")
	withdrawalRule := NewRateLimitRule(cfg.Redis.Prefix, "withdrawal", cfg.Security.WithdrawalRateLimit, "error.withdrawal_too_many")

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", RateLimitMiddleware(cache.Client(), loginRule, KeyByIPAndJSONField("username")), publicHandler.Login)
		}

		// 登录态接口，管理员与团长通用
		authenticated := apiV1.Group("")
		authenticated.Use(JWTAuthMiddleware(c.AuthService))
		{
			authenticated.GET("/me", publicHandler.Me)
		}

		admin := apiV1.Group("/admin")
		admin.Use(JWTAuthMiddleware(c.AuthService), RBACMiddleware(c.AuthzService))
		{
			// 团长管理
			admin.GET("/leaders", adminHandler.ListLeaders)
			admin.POST("/leaders", adminHandler.CreateLeader)
			admin.GET("/leaders/:id", adminHandler.GetLeader)
			admin.PUT("/leaders/:id", adminHandler.UpdateLeader)
			admin.PATCH("/leaders/:id/status", adminHandler.UpdateLeaderStatus)
			admin.GET("/leaders/:id/stats", adminHandler.GetLeaderStats)

			// 订单管理
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/orders/stats", adminHandler.GetOrderStats)
			admin.GET("/orders/delivery-list", adminHandler.GetDeliveryList)
			admin.GET("/orders/:id", adminHandler.GetOrder)
			admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
			admin.POST("/orders/batch/delete", adminHandler.BatchDeleteOrders)

			// 佣金管理
			admin.GET("/commissions", adminHandler.ListCommissions)
			admin.GET("/commissions/stats", adminHandler.GetCommissionStats)
			admin.GET("/commissions/:id", adminHandler.GetCommission)
			admin.POST("/commissions/adjustment", adminHandler.CreateCommissionAdjustment)
			admin.POST("/commissions/batch/settle", adminHandler.BatchSettleCommissions)
			admin.POST("/commissions/reconcile", adminHandler.ReconcileCommissions)

			// 提现审核
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.GET("/withdrawals/stats", adminHandler.GetWithdrawalStats)
			admin.GET("/withdrawals/:id", adminHandler.GetWithdrawal)
			admin.POST("/withdrawals/:id/review", adminHandler.ReviewWithdrawal)

			admin.GET("/authz/catalog", func(ctx *gin.Context) {
				response.Success(ctx, gin.H{
					"items":    buildPermissionCatalog(r, c.AuthzService),
					"policies": builtinRolePolicies(c.AuthzService),
				})
			})
		}

		leader := apiV1.Group("/leader")
		leader.Use(JWTAuthMiddleware(c.AuthService), RBACMiddleware(c.AuthzService))
		{
			leader.GET("/profile", leaderHandler.GetProfile)
			leader.GET("/stats", leaderHandler.GetStats)

			leader.GET("/orders", leaderHandler.ListOrders)
			leader.GET("/orders/stats", leaderHandler.GetOrderStats)
			leader.GET("/orders/:id", leaderHandler.GetOrder)
			leader.PATCH("/orders/:id/status", leaderHandler.UpdateOrderStatus)

			leader.GET("/commissions", leaderHandler.ListCommissions)
			leader.GET("/commissions/stats", leaderHandler.GetCommissionStats)

			leader.GET("/withdrawals", leaderHandler.ListWithdrawals)
			leader.POST("/withdrawals", RateLimitMiddleware(cache.Client(), withdrawalRule, KeyByPrincipal), leaderHandler.CreateWithdrawal)
			leader.GET("/withdrawals/stats", leaderHandler.GetWithdrawalStats)
			leader.GET("/withdrawals/:id", leaderHandler.GetWithdrawal)
			leader.POST("/withdrawals/:id/cancel", leaderHandler.CancelWithdrawal)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

func registerBindingValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	if err := handlershared.RegisterValidators(v); err != nil {
		logger.Errorw("binding_validator_register_failed", "error", err)
	}
}

type permissionCatalogItem struct {
	Module     string   `json:"module"`
	Method     string   `json:"method"`
	Object     string   `json:"object"`
	Permission string   `json:"permission"`
	Roles      []string `json:"roles"`
}

// buildPermissionCatalog 列出受 RBAC 保护的接口及可访问的预置角色
func buildPermissionCatalog(engine *gin.Engine, authzService *authz.Service) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") && !strings.HasPrefix(item.Path, "/api/v1/leader/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
			Roles:      allowedBuiltinRoles(authzService, object, method),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func allowedBuiltinRoles(authzService *authz.Service, object, method string) []string {
	roles := []string{}
	if authzService == nil {
		return roles
	}
	for _, seed := range authz.BuiltinRoleSeeds() {
		subject, err := authz.NormalizeRole(seed.Role)
		if err != nil {
			continue
		}
		if ok, err := authzService.Enforce(subject, object, method); err == nil && ok {
			roles = append(roles, seed.Role)
		}
	}
	return roles
}

func builtinRolePolicies(authzService *authz.Service) map[string][]authz.Policy {
	result := make(map[string][]authz.Policy)
	if authzService == nil {
		return result
	}
	for _, seed := range authz.BuiltinRoleSeeds() {
		policies, err := authzService.GetRolePolicies(seed.Role)
		if err != nil {
			logger.Warnw("authz_role_policies_failed", "role", seed.Role, "error", err)
			continue
		}
		result[seed.Role] = policies
	}
	return result
}

// derivePermissionModule /admin/orders/:id -> admin.orders
func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	return segments[0] + "." + segments[1]
}

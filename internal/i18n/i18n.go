package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	LocaleZhCN    = "zh-CN"
	LocaleEnUS    = "en-US"
	DefaultLocale = LocaleZhCN
)

const localeHeader = "X-Locale"

var messages = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未登录或登录已失效",
		"error.forbidden":                   "无权执行该操作",
		"error.not_found":                   "资源不存在",
		"error.internal":                    "服务器内部错误",
		"error.jwt_secret_missing":          "JWT 密钥未配置",
		"error.auth_header_missing":         "缺少 Authorization 请求头",
		"error.auth_header_invalid":         "Authorization 格式错误",
		"error.token_invalid":               "无效的 token",
		"error.token_revoked":               "token 已失效，请重新登录",
		"error.user_disabled":               "账号已被禁用",
		"error.user_id_invalid":             "用户 ID 无效",
		"error.user_id_type_invalid":        "用户 ID 类型错误",
		"error.invalid_credentials":         "用户名或密码错误",
		"error.login_too_many":              "登录尝试过于频繁，请 %d 秒后再试",
		"error.withdrawal_too_many":         "提现申请过于频繁，请 %d 秒后再试",
		"error.rate_limited":                "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":      "限流服务不可用",
		"error.password_weak":               "密码强度不足",
		"error.password_min_length":         "密码长度不能少于 %d 位",
		"error.password_max_length":         "密码不能超过 %d 字节",
		"error.password_require_upper":      "密码需包含大写字母",
		"error.password_require_lower":      "密码需包含小写字母",
		"error.password_require_number":     "密码需包含数字",
		"error.password_require_special":    "密码需包含特殊字符",
		"error.order_not_found":             "订单不存在",
		"error.order_status_invalid":        "无效的订单状态",
		"error.order_transition_invalid":    "当前订单状态不允许该操作",
		"error.order_fetch_failed":          "获取订单失败",
		"error.order_update_failed":         "更新订单状态失败",
		"error.order_delete_failed":         "删除订单失败",
		"error.settlement_failed":           "佣金结算失败",
		"error.leader_not_found":            "团长不存在",
		"error.leader_disabled":             "团长已被禁用",
		"error.leader_exists":               "用户名或手机号已存在",
		"error.leader_fetch_failed":         "获取团长信息失败",
		"error.leader_save_failed":          "保存团长信息失败",
		"error.community_not_found":         "社区不存在",
		"error.commission_not_found":        "佣金记录不存在",
		"error.commission_fetch_failed":     "获取佣金记录失败",
		"error.commission_none_pending":     "没有可结算的佣金记录",
		"error.commission_save_failed":      "佣金操作失败",
		"error.amount_invalid":              "金额无效",
		"error.balance_insufficient":        "余额不足",
		"error.withdrawal_not_found":        "提现申请不存在",
		"error.withdrawal_pending_exists":   "存在待审核的提现申请",
		"error.withdrawal_already_reviewed": "该申请已审核",
		"error.withdrawal_not_cancellable":  "只能取消待审核的申请",
		"error.withdrawal_reason_required":  "拒绝时必须填写原因",
		"error.withdrawal_account_required": "请填写收款账户信息",
		"error.withdrawal_fetch_failed":     "获取提现申请失败",
		"error.withdrawal_save_failed":      "提现操作失败",
		"error.delivery_date_required":      "请指定配送日期",
		"error.delivery_group_invalid":      "无效的汇总方式",
		"error.queue_unavailable":           "任务队列不可用",
	},
	LocaleEnUS: {
		"error.bad_request":                 "Invalid request",
		"error.unauthorized":                "Unauthorized",
		"error.forbidden":                   "Forbidden",
		"error.not_found":                   "Not found",
		"error.internal":                    "Internal server error",
		"error.jwt_secret_missing":          "JWT secret is not configured",
		"error.auth_header_missing":         "Authorization header is missing",
		"error.auth_header_invalid":         "Authorization header is invalid",
		"error.token_invalid":               "Invalid token",
		"error.token_revoked":               "Token revoked, please sign in again",
		"error.user_disabled":               "Account disabled",
		"error.user_id_invalid":             "Invalid user id",
		"error.user_id_type_invalid":        "Invalid user id type",
		"error.invalid_credentials":         "Invalid username or password",
		"error.login_too_many":              "Too many login attempts, retry in %d seconds",
		"error.withdrawal_too_many":         "Too many withdrawal requests, retry in %d seconds",
		"error.rate_limited":                "Too many requests, retry in %d seconds",
		"error.rate_limit_unavailable":      "Rate limiter unavailable",
		"error.password_weak":               "Password is too weak",
		"error.password_min_length":         "Password must be at least %d characters",
		"error.password_max_length":         "Password must not exceed %d bytes",
		"error.password_require_upper":      "Password must contain an uppercase letter",
		"error.password_require_lower":      "Password must contain a lowercase letter",
		"error.password_require_number":     "Password must contain a digit",
		"error.password_require_special":    "Password must contain a special character",
		"error.order_not_found":             "Order not found",
		"error.order_status_invalid":        "Invalid order status",
		"error.order_transition_invalid":    "Order status transition not allowed",
		"error.order_fetch_failed":          "Failed to fetch order",
		"error.order_update_failed":         "Failed to update order status",
		"error.order_delete_failed":         "Failed to delete orders",
		"error.settlement_failed":           "Commission settlement failed",
		"error.leader_not_found":            "Leader not found",
		"error.leader_disabled":             "Leader disabled",
		"error.leader_exists":               "Username or phone already exists",
		"error.leader_fetch_failed":         "Failed to fetch leader",
		"error.leader_save_failed":          "Failed to save leader",
		"error.community_not_found":         "Community not found",
		"error.commission_not_found":        "Commission not found",
		"error.commission_fetch_failed":     "Failed to fetch commissions",
		"error.commission_none_pending":     "No pending commission to settle",
		"error.commission_save_failed":      "Commission operation failed",
		"error.amount_invalid":              "Invalid amount",
		"error.balance_insufficient":        "Insufficient balance",
		"error.withdrawal_not_found":        "Withdrawal not found",
		"error.withdrawal_pending_exists":   "A pending withdrawal already exists",
		"error.withdrawal_already_reviewed": "Withdrawal already reviewed",
		"error.withdrawal_not_cancellable":  "Only pending withdrawals can be cancelled",
		"error.withdrawal_reason_required":  "Reject reason is required",
		"error.withdrawal_account_required": "Account name and number are required",
		"error.withdrawal_fetch_failed":     "Failed to fetch withdrawals",
		"error.withdrawal_save_failed":      "Withdrawal operation failed",
		"error.delivery_date_required":      "Delivery date is required",
		"error.delivery_group_invalid":      "Invalid group by",
		"error.queue_unavailable":           "Task queue unavailable",
	},
}

// NormalizeLocale 归一化语言标识，未知语言回退到默认语言
func NormalizeLocale(locale string) string {
	normalized := strings.TrimSpace(locale)
	if normalized == "" {
		return DefaultLocale
	}
	if idx := strings.IndexAny(normalized, ",;"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	switch strings.ToLower(normalized) {
	case "zh", "zh-cn", "zh_cn", "zh-hans":
		return LocaleZhCN
	case "en", "en-us", "en_us":
		return LocaleEnUS
	}
	return DefaultLocale
}

// ResolveLocale 从请求中解析语言（X-Locale 优先，其次 Accept-Language）
func ResolveLocale(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return DefaultLocale
	}
	if locale := strings.TrimSpace(c.GetHeader(localeHeader)); locale != "" {
		return NormalizeLocale(locale)
	}
	return NormalizeLocale(c.GetHeader("Accept-Language"))
}

// T 翻译消息 key，缺失时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	if table, ok := messages[NormalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}

package shared

import (
	"errors"

	"github.com/groupbuy-next/internal/http/response"
	"github.com/groupbuy-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// ServiceErrorRules 业务错误统一映射表
var ServiceErrorRules = []MappedHandlerError{
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrInvalidStatus, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrInvalidTransition, Code: response.CodeBadRequest, Key: "error.order_transition_invalid"},
	{Target: service.ErrInvalidAmount, Code: response.CodeBadRequest, Key: "error.amount_invalid"},
	{Target: service.ErrMissingReason, Code: response.CodeBadRequest, Key: "error.withdrawal_reason_required"},
	{Target: service.ErrNoPendingCommission, Code: response.CodeBadRequest, Key: "error.commission_none_pending"},
	{Target: service.ErrAccountRequired, Code: response.CodeBadRequest, Key: "error.withdrawal_account_required"},
	{Target: service.ErrInvalidGroupBy, Code: response.CodeBadRequest, Key: "error.delivery_group_invalid"},
	{Target: service.ErrDeliveryDateRequired, Code: response.CodeBadRequest, Key: "error.delivery_date_required"},
	{Target: service.ErrEmptySelection, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrLeaderNotFound, Code: response.CodeNotFound, Key: "error.leader_not_found"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrWithdrawalNotFound, Code: response.CodeNotFound, Key: "error.withdrawal_not_found"},
	{Target: service.ErrCommissionNotFound, Code: response.CodeNotFound, Key: "error.commission_not_found"},
	{Target: service.ErrCommunityNotFound, Code: response.CodeNotFound, Key: "error.community_not_found"},
	{Target: service.ErrInsufficientBalance, Code: response.CodeConflict, Key: "error.balance_insufficient"},
	{Target: service.ErrWithdrawalAlreadyPending, Code: response.CodeConflict, Key: "error.withdrawal_pending_exists"},
	{Target: service.ErrAlreadyReviewed, Code: response.CodeConflict, Key: "error.withdrawal_already_reviewed"},
	{Target: service.ErrNotCancellable, Code: response.CodeConflict, Key: "error.withdrawal_not_cancellable"},
	{Target: service.ErrLeaderDisabled, Code: response.CodeConflict, Key: "error.leader_disabled"},
	{Target: service.ErrLeaderExists, Code: response.CodeConflict, Key: "error.leader_exists"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrSettlementFailed, Code: response.CodeInternal, Key: "error.settlement_failed"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeInternal, Key: "error.queue_unavailable"},
}

// policyError 密码策略错误携带独立的文案 key
type policyError interface {
	Key() string
	Args() []interface{}
}

// RespondServiceError 按映射表返回业务错误，未命中时返回 fallback 并记录原始错误。
func RespondServiceError(c *gin.Context, err error, fallbackKey string) {
	var policyErr policyError
	if errors.As(err, &policyErr) && errors.Is(err, service.ErrWeakPassword) {
		RespondErrorWithArgs(c, response.CodeBadRequest, policyErr.Key(), policyErr.Args()...)
		return
	}
	for _, rule := range ServiceErrorRules {
		if errors.Is(err, rule.Target) {
			// 结算失败属于服务端错误，保留原始错误日志
			if rule.Code == response.CodeInternal {
				RespondError(c, rule.Code, rule.Key, err)
				return
			}
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, response.CodeInternal, fallbackKey, err)
}

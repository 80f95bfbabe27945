package service

import "errors"

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidStatus            = errors.New("invalid status")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrForbidden                = errors.New("forbidden")
	ErrLeaderNotFound           = errors.New("leader not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrWithdrawalNotFound       = errors.New("withdrawal not found")
	ErrCommissionNotFound       = errors.New("commission not found")
	ErrCommunityNotFound        = errors.New("community not found")
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrWithdrawalAlreadyPending = errors.New("withdrawal already pending")
	ErrAlreadyReviewed          = errors.New("withdrawal already reviewed")
	ErrNotCancellable           = errors.New("withdrawal not cancellable")
	ErrMissingReason            = errors.New("reject reason required")
	ErrSettlementFailed         = errors.New("settlement failed")
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrNoPendingCommission      = errors.New("no pending commission")
	ErrLeaderDisabled           = errors.New("leader disabled")
	ErrLeaderExists             = errors.New("leader already exists")
	ErrAccountRequired          = errors.New("withdrawal account required")
	ErrInvalidGroupBy           = errors.New("invalid group by")
	ErrDeliveryDateRequired     = errors.New("delivery date required")
	ErrEmptySelection           = errors.New("empty selection")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUserDisabled             = errors.New("user disabled")
	ErrWeakPassword             = errors.New("weak password")
	ErrQueueUnavailable         = errors.New("queue unavailable")
)

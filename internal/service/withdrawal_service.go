package service

import (
	"strings"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/queue"
	"github.com/groupbuy-next/internal/repository"

	"gorm.io/gorm"
)

// WithdrawalService 提现服务
type WithdrawalService struct {
	withdrawalRepo repository.WithdrawalRepository
	leaderRepo     repository.LeaderRepository
	queueClient    *queue.Client
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	leaderRepo repository.LeaderRepository,
	queueClient *queue.Client,
) *WithdrawalService {
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		leaderRepo:     leaderRepo,
		queueClient:    queueClient,
	}
}

// WithdrawalCreateInput 提现申请参数
type WithdrawalCreateInput struct {
	Amount        models.Money
	AccountName   string
	AccountNumber string
}

// WithdrawalStats 提现汇总
type WithdrawalStats struct {
	Balance       models.Money `json:"balance"`
	Available     models.Money `json:"available"`
	PendingAmount models.Money `json:"pending_amount"`
	PendingCount  int64        `json:"pending_count"`
	ApprovedTotal models.Money `json:"approved_total"`
	ApprovedCount int64        `json:"approved_count"`
	RejectedCount int64        `json:"rejected_count"`
}

// Create 团长发起提现，申请金额立即从余额中扣除
func (s *WithdrawalService) Create(principal Principal, input WithdrawalCreateInput) (*models.Withdrawal, error) {
	if !principal.IsLeader() {
		return nil, ErrForbidden
	}
	amount := input.Amount
	if !amount.IsPositive() || !exactCents(amount) {
		return nil, ErrInvalidAmount
	}
	accountName := strings.TrimSpace(input.AccountName)
	accountNumber := strings.TrimSpace(input.AccountNumber)
	if accountName == "" || accountNumber == "" {
		return nil, ErrAccountRequired
	}

	var withdrawal *models.Withdrawal
	err := s.leaderRepo.Transaction(func(tx *gorm.DB) error {
		leaderRepo := s.leaderRepo.WithTx(tx)
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)

		leader, err := leaderRepo.GetByIDForUpdate(principal.LeaderID)
		if err != nil {
			return err
		}
		if leader == nil {
			return ErrLeaderNotFound
		}
		if leader.Status != constants.LeaderStatusActive {
			return ErrLeaderDisabled
		}
		pending, err := withdrawalRepo.HasPending(leader.ID)
		if err != nil {
			return err
		}
		if pending {
			return ErrWithdrawalAlreadyPending
		}
		if amount.GreaterThan(leader.Balance.Decimal) {
			return ErrInsufficientBalance
		}

		now := time.Now()
		withdrawal = &models.Withdrawal{
			LeaderID:      leader.ID,
			Amount:        amount,
			AccountName:   accountName,
			AccountNumber: accountNumber,
			Status:        constants.WithdrawalStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := withdrawalRepo.Create(withdrawal); err != nil {
			return err
		}
		deducted, err := leaderRepo.DeductBalance(leader.ID, amount)
		if err != nil {
			return err
		}
		if !deducted {
			return ErrInsufficientBalance
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_created",
		"withdrawal_id", withdrawal.ID,
		"leader_id", withdrawal.LeaderID,
		"amount", withdrawal.Amount.String(),
	)
	return withdrawal, nil
}

// Review 管理员审核提现，驳回时退回余额
func (s *WithdrawalService) Review(principal Principal, id uint, decision string, reason string) (*models.Withdrawal, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != constants.WithdrawalStatusApproved && decision != constants.WithdrawalStatusRejected {
		return nil, ErrInvalidStatus
	}
	reason = strings.TrimSpace(reason)
	if decision == constants.WithdrawalStatusRejected && reason == "" {
		return nil, ErrMissingReason
	}
	if decision == constants.WithdrawalStatusApproved {
		reason = ""
	}

	reviewerID := principal.UserID
	withdrawal, err := s.finish(id, decision, reason, &reviewerID, nil)
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_reviewed",
		"withdrawal_id", withdrawal.ID,
		"leader_id", withdrawal.LeaderID,
		"status", withdrawal.Status,
		"operator_id", principal.UserID,
	)
	s.enqueueReviewed(withdrawal)
	return withdrawal, nil
}

// Cancel 团长取消自己的待审核申请
func (s *WithdrawalService) Cancel(principal Principal, id uint) (*models.Withdrawal, error) {
	if !principal.IsLeader() {
		return nil, ErrForbidden
	}
	owner := func(w *models.Withdrawal) error {
		if w.LeaderID != principal.LeaderID {
			return ErrForbidden
		}
		if w.Status != constants.WithdrawalStatusPending {
			return ErrNotCancellable
		}
		return nil
	}
	withdrawal, err := s.finish(id, constants.WithdrawalStatusRejected, constants.WithdrawalCancelledByLeader, nil, owner)
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_cancelled",
		"withdrawal_id", withdrawal.ID,
		"leader_id", withdrawal.LeaderID,
	)
	s.enqueueReviewed(withdrawal)
	return withdrawal, nil
}

// finish 结束待审核申请；status 为 rejected 时退回余额
func (s *WithdrawalService) finish(
	id uint,
	status string,
	reason string,
	reviewerID *uint,
	check func(w *models.Withdrawal) error,
) (*models.Withdrawal, error) {
	var withdrawal *models.Withdrawal
	err := s.leaderRepo.Transaction(func(tx *gorm.DB) error {
		withdrawalRepo := s.withdrawalRepo.WithTx(tx)
		leaderRepo := s.leaderRepo.WithTx(tx)

		current, err := withdrawalRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrWithdrawalNotFound
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}
		if current.Status != constants.WithdrawalStatusPending {
			return ErrAlreadyReviewed
		}

		now := time.Now()
		updates := map[string]interface{}{
			"reviewed_at":   now,
			"reviewed_by":   reviewerID,
			"reject_reason": reason,
			"updated_at":    now,
		}
		finished, err := withdrawalRepo.FinishReview(current.ID, status, updates)
		if err != nil {
			return err
		}
		if !finished {
			return ErrAlreadyReviewed
		}

		if status == constants.WithdrawalStatusRejected {
			if err := leaderRepo.AddBalance(current.LeaderID, current.Amount); err != nil {
				if isNotFound(err) {
					return ErrLeaderNotFound
				}
				return err
			}
		}

		current.Status = status
		current.RejectReason = reason
		current.ReviewedAt = &now
		current.ReviewedBy = reviewerID
		current.UpdatedAt = now
		withdrawal = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return withdrawal, nil
}

func (s *WithdrawalService) enqueueReviewed(withdrawal *models.Withdrawal) {
	if s.queueClient == nil || withdrawal == nil {
		return
	}
	if err := s.queueClient.EnqueueWithdrawalReviewed(queue.WithdrawalReviewedPayload{
		WithdrawalID: withdrawal.ID,
		LeaderID:     withdrawal.LeaderID,
		Status:       withdrawal.Status,
		Amount:       withdrawal.Amount.String(),
		Reason:       withdrawal.RejectReason,
	}); err != nil {
		logger.Warnw("withdrawal_enqueue_reviewed_failed",
			"withdrawal_id", withdrawal.ID,
			"error", err,
		)
	}
}

// List 提现申请列表
func (s *WithdrawalService) List(principal Principal, filter repository.WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	leaderID, err := principal.scopeLeaderID(filter.LeaderID)
	if err != nil {
		return nil, 0, err
	}
	filter.LeaderID = leaderID
	filter.Status = strings.TrimSpace(filter.Status)
	return s.withdrawalRepo.List(filter)
}

// Get 提现申请详情
func (s *WithdrawalService) Get(principal Principal, id uint) (*models.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, ErrWithdrawalNotFound
	}
	if !principal.CanActOnLeader(withdrawal.LeaderID) {
		return nil, ErrForbidden
	}
	return withdrawal, nil
}

// Stats 提现汇总，团长维度包含当前余额
func (s *WithdrawalService) Stats(principal Principal, leaderID uint) (*WithdrawalStats, error) {
	scoped, err := principal.scopeLeaderID(leaderID)
	if err != nil {
		return nil, err
	}
	stats := &WithdrawalStats{
		Balance:       models.ZeroMoney(),
		PendingAmount: models.ZeroMoney(),
		ApprovedTotal: models.ZeroMoney(),
	}

	if scoped != 0 {
		leader, err := s.leaderRepo.GetByID(scoped)
		if err != nil {
			return nil, err
		}
		if leader == nil {
			return nil, ErrLeaderNotFound
		}
		stats.Balance = leader.Balance
	} else {
		leaders, err := s.leaderRepo.ListAll()
		if err != nil {
			return nil, err
		}
		for _, leader := range leaders {
			stats.Balance = stats.Balance.Add(leader.Balance)
		}
	}
	stats.Available = stats.Balance

	rows, err := s.withdrawalRepo.StatsByStatus(scoped)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		switch row.Status {
		case constants.WithdrawalStatusPending:
			stats.PendingAmount = stats.PendingAmount.Add(row.Amount)
			stats.PendingCount += row.Count
		case constants.WithdrawalStatusApproved:
			stats.ApprovedTotal = stats.ApprovedTotal.Add(row.Amount)
			stats.ApprovedCount += row.Count
		case constants.WithdrawalStatusRejected:
			stats.RejectedCount += row.Count
		}
	}
	return stats, nil
}

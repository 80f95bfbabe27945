package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService 佣金服务
type CommissionService struct {
	commissionRepo repository.CommissionRepository
	leaderRepo     repository.LeaderRepository
}

// NewCommissionService 创建佣金服务
func NewCommissionService(commissionRepo repository.CommissionRepository, leaderRepo repository.LeaderRepository) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		leaderRepo:     leaderRepo,
	}
}

// CommissionAdjustmentInput 手工调整参数
type CommissionAdjustmentInput struct {
	LeaderID uint
	Amount   models.Money
	Remark   string
	// Deferred 为 true 时只记录待结算流水，不动账，等待批量结算
	Deferred bool
}

// LeaderSettleSummary 单个团长的批量结算结果
type LeaderSettleSummary struct {
	LeaderID uint         `json:"leader_id"`
	Count    int          `json:"count"`
	Amount   models.Money `json:"amount"`
}

// BatchSettleResult 批量结算结果
type BatchSettleResult struct {
	SettledCount int                   `json:"settled_count"`
	TotalAmount  models.Money          `json:"total_amount"`
	Leaders      []LeaderSettleSummary `json:"leaders"`
}

// CommissionStats 佣金统计
type CommissionStats struct {
	TotalCount    int64                   `json:"total_count"`
	TotalAmount   models.Money            `json:"total_amount"`
	SettledAmount models.Money            `json:"settled_amount"`
	PendingAmount models.Money            `json:"pending_amount"`
	ByType        map[string]models.Money `json:"by_type"`
}

// CreateAdjustment 管理员手工调整团长佣金
func (s *CommissionService) CreateAdjustment(principal Principal, input CommissionAdjustmentInput) (*models.Commission, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	amount := input.Amount
	if amount.IsZero() || !exactCents(amount) {
		return nil, ErrInvalidAmount
	}
	remark := strings.TrimSpace(input.Remark)
	if remark == "" {
		remark = constants.AdjustmentDefaultRemark
	}

	var record *models.Commission
	err := s.leaderRepo.Transaction(func(tx *gorm.DB) error {
		leaderRepo := s.leaderRepo.WithTx(tx)
		leader, err := leaderRepo.GetByIDForUpdate(input.LeaderID)
		if err != nil {
			return err
		}
		if leader == nil {
			return ErrLeaderNotFound
		}

		now := time.Now()
		record = &models.Commission{
			LeaderID:  leader.ID,
			Amount:    amount,
			Type:      constants.CommissionTypeAdjustment,
			Status:    constants.CommissionStatusPending,
			Remark:    remark,
			CreatedAt: now,
		}
		if !input.Deferred {
			applied, err := leaderRepo.ApplyAdjustment(leader.ID, amount, positivePart(amount))
			if err != nil {
				return err
			}
			if !applied {
				return ErrInsufficientBalance
			}
			record.Status = constants.CommissionStatusSettled
			record.SettledAt = &now
		}
		return s.commissionRepo.WithTx(tx).Create(record)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("commission_adjusted",
		"commission_id", record.ID,
		"leader_id", record.LeaderID,
		"amount", record.Amount.String(),
		"status", record.Status,
		"operator_id", principal.UserID,
	)
	return record, nil
}

// BatchSettle 结算选中的待结算佣金，按团长汇总入账
func (s *CommissionService) BatchSettle(principal Principal, ids []uint) (*BatchSettleResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, ErrNoPendingCommission
	}

	result := &BatchSettleResult{TotalAmount: models.ZeroMoney()}
	err := s.leaderRepo.Transaction(func(tx *gorm.DB) error {
		commissionRepo := s.commissionRepo.WithTx(tx)
		leaderRepo := s.leaderRepo.WithTx(tx)

		rows, err := commissionRepo.ListPendingByIDsForUpdate(ids)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrNoPendingCommission
		}

		type leaderBucket struct {
			count int
			sum   decimal.Decimal
		}
		buckets := make(map[uint]*leaderBucket)
		rowIDs := make([]uint, 0, len(rows))
		for _, row := range rows {
			bucket, ok := buckets[row.LeaderID]
			if !ok {
				bucket = &leaderBucket{}
				buckets[row.LeaderID] = bucket
			}
			bucket.count++
			bucket.sum = bucket.sum.Add(row.Amount.Decimal)
			rowIDs = append(rowIDs, row.ID)
		}

		leaderIDs := make([]uint, 0, len(buckets))
		for leaderID := range buckets {
			leaderIDs = append(leaderIDs, leaderID)
		}
		sort.Slice(leaderIDs, func(i, j int) bool { return leaderIDs[i] < leaderIDs[j] })

		for _, leaderID := range leaderIDs {
			bucket := buckets[leaderID]
			leader, err := leaderRepo.GetByIDForUpdate(leaderID)
			if err != nil {
				return err
			}
			if leader == nil {
				return ErrLeaderNotFound
			}
			amount := models.NewMoneyFromDecimal(bucket.sum)
			// 批量结算只入账余额，累计佣金不变
			applied, err := leaderRepo.ApplyAdjustment(leaderID, amount, models.ZeroMoney())
			if err != nil {
				return err
			}
			if !applied {
				return ErrInsufficientBalance
			}
			result.Leaders = append(result.Leaders, LeaderSettleSummary{
				LeaderID: leaderID,
				Count:    bucket.count,
				Amount:   amount,
			})
			result.TotalAmount = result.TotalAmount.Add(amount)
		}

		settled, err := commissionRepo.MarkSettled(rowIDs, time.Now())
		if err != nil {
			return err
		}
		if settled != int64(len(rowIDs)) {
			return fmt.Errorf("%w: marked %d of %d commissions", ErrSettlementFailed, settled, len(rowIDs))
		}
		result.SettledCount = len(rowIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("commission_batch_settled",
		"operator_id", principal.UserID,
		"settled_count", result.SettledCount,
		"total_amount", result.TotalAmount.String(),
	)
	return result, nil
}

// List 佣金流水列表
func (s *CommissionService) List(principal Principal, filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	leaderID, err := principal.scopeLeaderID(filter.LeaderID)
	if err != nil {
		return nil, 0, err
	}
	filter.LeaderID = leaderID
	filter.Type = strings.TrimSpace(filter.Type)
	filter.Status = strings.TrimSpace(filter.Status)
	return s.commissionRepo.List(filter)
}

// Get 佣金流水详情
func (s *CommissionService) Get(principal Principal, id uint) (*models.Commission, error) {
	record, err := s.commissionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCommissionNotFound
	}
	if !principal.CanActOnLeader(record.LeaderID) {
		return nil, ErrForbidden
	}
	return record, nil
}

// Stats 佣金汇总，leaderID 为 0 时统计全部团长（仅管理员）
func (s *CommissionService) Stats(principal Principal, leaderID uint) (*CommissionStats, error) {
	scoped, err := principal.scopeLeaderID(leaderID)
	if err != nil {
		return nil, err
	}
	rows, err := s.commissionRepo.StatsByTypeStatus(scoped)
	if err != nil {
		return nil, err
	}
	return buildCommissionStats(rows), nil
}

func buildCommissionStats(rows []repository.CommissionStatRow) *CommissionStats {
	stats := &CommissionStats{
		TotalAmount:   models.ZeroMoney(),
		SettledAmount: models.ZeroMoney(),
		PendingAmount: models.ZeroMoney(),
		ByType: map[string]models.Money{
			constants.CommissionTypeOrder:      models.ZeroMoney(),
			constants.CommissionTypeAdjustment: models.ZeroMoney(),
		},
	}
	for _, row := range rows {
		stats.TotalCount += row.Count
		stats.TotalAmount = stats.TotalAmount.Add(row.Amount)
		switch row.Status {
		case constants.CommissionStatusSettled:
			stats.SettledAmount = stats.SettledAmount.Add(row.Amount)
		case constants.CommissionStatusPending:
			stats.PendingAmount = stats.PendingAmount.Add(row.Amount)
		}
		stats.ByType[row.Type] = stats.ByType[row.Type].Add(row.Amount)
	}
	return stats
}

func positivePart(amount models.Money) models.Money {
	if amount.IsPositive() {
		return amount
	}
	return models.ZeroMoney()
}

package repository

import (
	"errors"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionRepository 佣金流水数据访问接口
type CommissionRepository interface {
	Create(commission *models.Commission) error
	GetByID(id uint) (*models.Commission, error)
	GetByOrderID(orderID uint) (*models.Commission, error)
	List(filter CommissionListFilter) ([]models.Commission, int64, error)
	ListPendingByIDsForUpdate(ids []uint) ([]models.Commission, error)
	MarkSettled(ids []uint, settledAt time.Time) (int64, error)
	StatsByTypeStatus(leaderID uint) ([]CommissionStatRow, error)
	OrderLedgerByLeader() ([]CommissionLedgerRow, error)
	WithTx(tx *gorm.DB) *GormCommissionRepository
}

// GormCommissionRepository GORM 实现
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓库
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) *GormCommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Create 追加佣金流水
func (r *GormCommissionRepository) Create(commission *models.Commission) error {
	return r.db.Omit("Leader", "Order").Create(commission).Error
}

// GetByID 获取佣金流水详情
func (r *GormCommissionRepository) GetByID(id uint) (*models.Commission, error) {
	var commission models.Commission
	if err := r.db.Preload("Leader").Preload("Order").First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetByOrderID 获取订单对应的结算流水
func (r *GormCommissionRepository) GetByOrderID(orderID uint) (*models.Commission, error) {
	var commission models.Commission
	if err := r.db.Where("order_id = ? AND type = ?", orderID, constants.CommissionTypeOrder).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// List 佣金流水列表
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{})
	if filter.LeaderID != 0 {
		query = query.Where("leader_id = ?", filter.LeaderID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Commission
	if err := query.Preload("Leader").Preload("Order").Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListPendingByIDsForUpdate 加锁获取给定 ID 中仍为 pending 的流水
func (r *GormCommissionRepository) ListPendingByIDsForUpdate(ids []uint) ([]models.Commission, error) {
	if len(ids) == 0 {
		return []models.Commission{}, nil
	}
	var rows []models.Commission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND status = ?", ids, constants.CommissionStatusPending).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSettled 将 pending 流水标记为已结算，返回实际更新行数
func (r *GormCommissionRepository) MarkSettled(ids []uint, settledAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Commission{}).
		Where("id IN ? AND status = ?", ids, constants.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":     constants.CommissionStatusSettled,
			"settled_at": settledAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StatsByTypeStatus 按类型与状态聚合佣金
func (r *GormCommissionRepository) StatsByTypeStatus(leaderID uint) ([]CommissionStatRow, error) {
	query := r.db.Model(&models.Commission{})
	if leaderID != 0 {
		query = query.Where("leader_id = ?", leaderID)
	}
	var rows []CommissionStatRow
	if err := query.
		Select("type, status, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Group("type, status").
		Order("type asc, status asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// OrderLedgerByLeader 各团长订单类佣金的笔数与已结算金额
func (r *GormCommissionRepository) OrderLedgerByLeader() ([]CommissionLedgerRow, error) {
	var rows []CommissionLedgerRow
	if err := r.db.Model(&models.Commission{}).
		Select("leader_id, COUNT(*) as order_count, "+
			"COALESCE(SUM(CASE WHEN status = ? THEN amount ELSE 0 END), 0) as settled_order_sum", constants.CommissionStatusSettled).
		Where("type = ?", constants.CommissionTypeOrder).
		Group("leader_id").
		Order("leader_id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

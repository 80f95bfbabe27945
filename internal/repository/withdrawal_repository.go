package repository

import (
	"errors"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository 提现申请数据访问接口
type WithdrawalRepository interface {
	Create(withdrawal *models.Withdrawal) error
	GetByID(id uint) (*models.Withdrawal, error)
	GetByIDForUpdate(id uint) (*models.Withdrawal, error)
	HasPending(leaderID uint) (bool, error)
	FinishReview(id uint, status string, updates map[string]interface{}) (bool, error)
	List(filter WithdrawalListFilter) ([]models.Withdrawal, int64, error)
	StatsByStatus(leaderID uint) ([]WithdrawalStatRow, error)
	WithTx(tx *gorm.DB) *GormWithdrawalRepository
}

// GormWithdrawalRepository GORM 实现
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository 创建提现仓库
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Create 创建提现申请
func (r *GormWithdrawalRepository) Create(withdrawal *models.Withdrawal) error {
	return r.db.Omit("Leader").Create(withdrawal).Error
}

// GetByID 获取提现详情
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := r.db.Preload("Leader").First(&withdrawal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// GetByIDForUpdate 加锁获取提现申请
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.Withdrawal, error) {
	var withdrawal models.Withdrawal
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// HasPending 团长是否存在待审核申请
func (r *GormWithdrawalRepository) HasPending(leaderID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Withdrawal{}).
		Where("leader_id = ? AND status = ?", leaderID, constants.WithdrawalStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FinishReview 结束审核：仅 pending 状态的申请会被更新
func (r *GormWithdrawalRepository) FinishReview(id uint, status string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Withdrawal{}).
		Where("id = ? AND status = ?", id, constants.WithdrawalStatusPending).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List 提现申请列表
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	query := r.db.Model(&models.Withdrawal{})
	if filter.LeaderID != 0 {
		query = query.Where("leader_id = ?", filter.LeaderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Withdrawal
	if err := query.Preload("Leader").Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// StatsByStatus 按状态聚合提现笔数与金额
func (r *GormWithdrawalRepository) StatsByStatus(leaderID uint) ([]WithdrawalStatRow, error) {
	query := r.db.Model(&models.Withdrawal{})
	if leaderID != 0 {
		query = query.Where("leader_id = ?", leaderID)
	}
	var rows []WithdrawalStatRow
	if err := query.
		Select("status, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Group("status").
		Order("status asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

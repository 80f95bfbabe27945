package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/groupbuy-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderRepository 团长数据访问接口，余额相关写操作均为原子表达式
type LeaderRepository interface {
	GetByID(id uint) (*models.Leader, error)
	GetByIDForUpdate(id uint) (*models.Leader, error)
	GetByUserID(userID uint) (*models.Leader, error)
	GetByPhone(phone string) (*models.Leader, error)
	Create(leader *models.Leader) error
	UpdateProfile(id uint, updates map[string]interface{}) error
	UpdateStatus(id uint, status string) error
	List(filter LeaderListFilter) ([]models.Leader, int64, error)
	ListAll() ([]models.Leader, error)
	ApplySettlement(id uint, amount models.Money) error
	ApplyAdjustment(id uint, amount models.Money, lifetimeDelta models.Money) (bool, error)
	AddBalance(id uint, amount models.Money) error
	DeductBalance(id uint, amount models.Money) (bool, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLeaderRepository
}

// GormLeaderRepository GORM 实现
type GormLeaderRepository struct {
	db *gorm.DB
}

// NewLeaderRepository 创建团长仓库
func NewLeaderRepository(db *gorm.DB) *GormLeaderRepository {
	return &GormLeaderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLeaderRepository) WithTx(tx *gorm.DB) *GormLeaderRepository {
	if tx == nil {
		return r
	}
	return &GormLeaderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormLeaderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 获取团长（含账号与社区）
func (r *GormLeaderRepository) GetByID(id uint) (*models.Leader, error) {
	if id == 0 {
		return nil, nil
	}
	var leader models.Leader
	if err := r.db.Preload("User").Preload("Community").First(&leader, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leader, nil
}

// GetByIDForUpdate 加锁获取团长，读取值用于账务判断
func (r *GormLeaderRepository) GetByIDForUpdate(id uint) (*models.Leader, error) {
	if id == 0 {
		return nil, nil
	}
	var leader models.Leader
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&leader, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leader, nil
}

// GetByUserID 按账号获取团长
func (r *GormLeaderRepository) GetByUserID(userID uint) (*models.Leader, error) {
	if userID == 0 {
		return nil, nil
	}
	var leader models.Leader
	if err := r.db.Where("user_id = ?", userID).First(&leader).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leader, nil
}

// GetByPhone 按手机号获取团长
func (r *GormLeaderRepository) GetByPhone(phone string) (*models.Leader, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	var leader models.Leader
	if err := r.db.Where("phone = ?", phone).First(&leader).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leader, nil
}

// Create 创建团长
func (r *GormLeaderRepository) Create(leader *models.Leader) error {
	return r.db.Create(leader).Error
}

// UpdateProfile 更新资料字段，不允许触碰账务字段
func (r *GormLeaderRepository) UpdateProfile(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	for _, column := range []string{"balance", "total_orders", "total_commission"} {
		delete(updates, column)
	}
	updates["updated_at"] = time.Now()
	return r.db.Model(&models.Leader{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatus 更新团长状态
func (r *GormLeaderRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Leader{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
}

// List 团长列表
func (r *GormLeaderRepository) List(filter LeaderListFilter) ([]models.Leader, int64, error) {
	query := r.db.Model(&models.Leader{})
	if filter.Status != "" {
		query = query.Where("leaders.status = ?", filter.Status)
	}
	if filter.CommunityID != 0 {
		query = query.Where("leaders.community_id = ?", filter.CommunityID)
	}
	query = applyKeywordFilter(query, filter.Keyword, "leaders.name", "leaders.phone")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var leaders []models.Leader
	if err := query.Preload("Community").Order("leaders.id desc").Find(&leaders).Error; err != nil {
		return nil, 0, err
	}
	return leaders, total, nil
}

// ListAll 全量团长，用于对账巡检
func (r *GormLeaderRepository) ListAll() ([]models.Leader, error) {
	var leaders []models.Leader
	if err := r.db.Order("id asc").Find(&leaders).Error; err != nil {
		return nil, err
	}
	return leaders, nil
}

// ApplySettlement 订单结算入账：余额、累计佣金、累计订单数
func (r *GormLeaderRepository) ApplySettlement(id uint, amount models.Money) error {
	result := r.db.Model(&models.Leader{}).Where("id = ?", id).Updates(map[string]interface{}{
		"balance":          gorm.Expr("balance + ?", amount),
		"total_commission": gorm.Expr("total_commission + ?", amount),
		"total_orders":     gorm.Expr("total_orders + ?", 1),
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApplyAdjustment 手工调整入账，负数调整不得使余额为负，返回是否生效
func (r *GormLeaderRepository) ApplyAdjustment(id uint, amount models.Money, lifetimeDelta models.Money) (bool, error) {
	query := r.db.Model(&models.Leader{}).Where("id = ?", id)
	if amount.IsNegative() {
		query = query.Where("balance + ? >= 0", amount)
	}
	result := query.Updates(map[string]interface{}{
		"balance":          gorm.Expr("balance + ?", amount),
		"total_commission": gorm.Expr("total_commission + ?", lifetimeDelta),
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddBalance 增加余额（批量结算、提现退回）
func (r *GormLeaderRepository) AddBalance(id uint, amount models.Money) error {
	result := r.db.Model(&models.Leader{}).Where("id = ?", id).Updates(map[string]interface{}{
		"balance":    gorm.Expr("balance + ?", amount),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeductBalance 扣减余额，余额不足时不更新并返回 false
func (r *GormLeaderRepository) DeductBalance(id uint, amount models.Money) (bool, error) {
	result := r.db.Model(&models.Leader{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

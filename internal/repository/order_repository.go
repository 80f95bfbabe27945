package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDForUpdate(id uint) (*models.Order, error)
	UpdateStatusFrom(id uint, from, to string, updates map[string]interface{}) (bool, error)
	MarkSettled(id uint, commission models.Money, settledAt time.Time) (bool, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	StatsByStatus(filter OrderStatsFilter) ([]OrderStatusStatRow, error)
	DailyTrend(filter OrderStatsFilter) ([]OrderTrendRow, error)
	ListDeliveryItems(filter DeliveryListFilter, groupBy string) ([]DeliveryItemRow, error)
	DeleteByIDs(ids []uint, allowedStatuses []string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Leader", "Community").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Omit("Product").Create(&items).Error; err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
}

// GetByID 获取订单详情
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Preload("Leader").Preload("Community").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 加锁获取订单
func (r *GormOrderRepository) GetByIDForUpdate(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdateStatusFrom 条件更新状态，仅当当前状态为 from 时生效
func (r *GormOrderRepository) UpdateStatusFrom(id uint, from, to string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for key, value := range updates {
		values[key] = value
	}
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkSettled 写入结算标记与佣金，已结算的订单不会被再次写入
func (r *GormOrderRepository) MarkSettled(id uint, commission models.Money, settledAt time.Time) (bool, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND settled_at IS NULL", id).
		Updates(map[string]interface{}{
			"commission_amount": commission,
			"settled_at":        settledAt,
			"updated_at":        settledAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.LeaderID != 0 {
		query = query.Where("orders.leader_id = ?", filter.LeaderID)
	}
	if filter.CommunityID != 0 {
		query = query.Where("orders.community_id = ?", filter.CommunityID)
	}
	if filter.Status != "" {
		query = query.Where("orders.status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("orders.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("orders.created_at <= ?", *filter.CreatedTo)
	}
	query = applyKeywordFilter(query, filter.Keyword, "orders.order_no", "orders.customer_name", "orders.customer_phone")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.Order
	if err := query.Preload("Items").Preload("Leader").Preload("Community").
		Order("orders.id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) statsQuery(filter OrderStatsFilter) *gorm.DB {
	query := r.db.Model(&models.Order{})
	if filter.LeaderID != 0 {
		query = query.Where("leader_id = ?", filter.LeaderID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}
	return query
}

// StatsByStatus 按状态聚合订单数与金额
func (r *GormOrderRepository) StatsByStatus(filter OrderStatsFilter) ([]OrderStatusStatRow, error) {
	var rows []OrderStatusStatRow
	if err := r.statsQuery(filter).
		Select("status, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as amount").
		Group("status").
		Order("status asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyTrend 按天聚合订单数与金额（不含已取消）
func (r *GormOrderRepository) DailyTrend(filter OrderStatsFilter) ([]OrderTrendRow, error) {
	dayExpr := dayExprByDialect(dbDialectName(r.db), "created_at")
	var rows []OrderTrendRow
	if err := r.statsQuery(filter).
		Select(fmt.Sprintf("%s as day, COUNT(*) as count, COALESCE(SUM(total_amount), 0) as amount", dayExpr)).
		Where("status <> ?", constants.OrderStatusCancelled).
		Group(dayExpr).
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListDeliveryItems 配送清单：按团长或社区、商品汇总数量
func (r *GormOrderRepository) ListDeliveryItems(filter DeliveryListFilter, groupBy string) ([]DeliveryItemRow, error) {
	groupIDExpr := "orders.leader_id"
	groupNameExpr := "COALESCE(leaders.name, '')"
	joinExpr := "LEFT JOIN leaders ON leaders.id = orders.leader_id"
	if groupBy == constants.DeliveryGroupByCommunity {
		groupIDExpr = "COALESCE(orders.community_id, 0)"
		groupNameExpr = "COALESCE(communities.name, '')"
		joinExpr = "LEFT JOIN communities ON communities.id = orders.community_id"
	}

	query := r.db.Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins(joinExpr).
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", filter.DayStart, filter.DayEnd)
	if len(filter.Statuses) > 0 {
		query = query.Where("orders.status IN ?", filter.Statuses)
	}
	if filter.LeaderID != 0 {
		query = query.Where("orders.leader_id = ?", filter.LeaderID)
	}

	var rows []DeliveryItemRow
	if err := query.Select(fmt.Sprintf(
		"%s as group_id, %s as group_name, order_items.product_id as product_id, order_items.product_name as product_name, "+
			"COALESCE(products.unit, '') as unit, COALESCE(SUM(order_items.quantity), 0) as quantity, COUNT(DISTINCT orders.id) as order_count",
		groupIDExpr, groupNameExpr,
	)).
		Group(fmt.Sprintf("%s, %s, order_items.product_id, order_items.product_name, products.unit", groupIDExpr, groupNameExpr)).
		Order("group_id asc, product_id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DeleteByIDs 批量删除指定状态范围内的订单及其订单项，返回删除数量
func (r *GormOrderRepository) DeleteByIDs(ids []uint, allowedStatuses []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var matched []uint
		query := tx.Model(&models.Order{}).Where("id IN ?", ids)
		if len(allowedStatuses) > 0 {
			query = query.Where("status IN ?", allowedStatuses)
		}
		if err := query.Pluck("id", &matched).Error; err != nil {
			return err
		}
		if len(matched) == 0 {
			return nil
		}
		if err := tx.Where("order_id IN ?", matched).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", matched).Delete(&models.Order{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/queue"
	"github.com/groupbuy-next/internal/repository"

	"gorm.io/gorm"
)

const (
	orderTrendDays    = 7
	deliveryDayLayout = "2006-01-02"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo      repository.OrderRepository
	leaderRepo     repository.LeaderRepository
	commissionRepo repository.CommissionRepository
	queueClient    *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	leaderRepo repository.LeaderRepository,
	commissionRepo repository.CommissionRepository,
	queueClient *queue.Client,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		leaderRepo:     leaderRepo,
		commissionRepo: commissionRepo,
		queueClient:    queueClient,
	}
}

// OrderStatusStat 单个状态的订单统计
type OrderStatusStat struct {
	Status string       `json:"status"`
	Count  int64        `json:"count"`
	Amount models.Money `json:"amount"`
}

// OrderTrendPoint 每日订单趋势
type OrderTrendPoint struct {
	Day    string       `json:"day"`
	Count  int64        `json:"count"`
	Amount models.Money `json:"amount"`
}

// OrderStats 订单统计
type OrderStats struct {
	TotalCount  int64             `json:"total_count"`
	TotalAmount models.Money      `json:"total_amount"`
	ByStatus    []OrderStatusStat `json:"by_status"`
	Trend       []OrderTrendPoint `json:"trend"`
}

// OrderStatsInput 订单统计参数
type OrderStatsInput struct {
	LeaderID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DeliveryListInput 配送清单参数
type DeliveryListInput struct {
	Date     string
	GroupBy  string
	LeaderID uint
}

// DeliveryItem 配送商品汇总
type DeliveryItem struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Unit        string `json:"unit"`
	Quantity    int64  `json:"quantity"`
	OrderCount  int64  `json:"order_count"`
}

// DeliveryGroup 一个团长或社区的配送汇总
type DeliveryGroup struct {
	GroupID       uint           `json:"group_id"`
	GroupName     string         `json:"group_name"`
	TotalQuantity int64          `json:"total_quantity"`
	Items         []DeliveryItem `json:"items"`
}

// DeliveryList 配送清单
type DeliveryList struct {
	Date    string          `json:"date"`
	GroupBy string          `json:"group_by"`
	Groups  []DeliveryGroup `json:"groups"`
}

// TransitionStatus 变更订单状态，进入 completed 时在同一事务内结算佣金
func (s *OrderService) TransitionStatus(principal Principal, orderID uint, newStatus string) (*models.Order, error) {
	target := normalizeOrderStatus(newStatus)
	if !isValidOrderStatus(target) {
		return nil, ErrInvalidStatus
	}
	if !principal.IsAdmin() && !principal.IsLeader() {
		return nil, ErrForbidden
	}

	var (
		result     *models.Order
		fromStatus string
		changed    bool
	)
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if !principal.CanActOnLeader(order.LeaderID) {
			return ErrForbidden
		}
		if order.Status == target {
			result = order
			return nil
		}
		if !canTransitionOrder(order.Status, target) {
			return ErrInvalidTransition
		}

		now := time.Now()
		updates := map[string]interface{}{}
		switch target {
		case constants.OrderStatusConfirmed:
			updates["confirmed_at"] = now
			order.ConfirmedAt = &now
		case constants.OrderStatusCancelled:
			updates["cancelled_at"] = now
			order.CancelledAt = &now
		case constants.OrderStatusCompleted:
			updates["completed_at"] = now
			order.CompletedAt = &now
		}
		ok, err := orderRepo.UpdateStatusFrom(order.ID, order.Status, target, updates)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		fromStatus = order.Status
		order.Status = target
		order.UpdatedAt = now

		if target == constants.OrderStatusCompleted {
			if err := settleOrder(
				orderRepo,
				s.leaderRepo.WithTx(tx),
				s.commissionRepo.WithTx(tx),
				order,
				now,
			); err != nil {
				logger.Errorw("order_settlement_failed",
					"order_id", order.ID,
					"order_no", order.OrderNo,
					"leader_id", order.LeaderID,
					"operator_id", principal.UserID,
					"error", err,
				)
				return err
			}
			logger.Infow("order_settled",
				"order_id", order.ID,
				"leader_id", order.LeaderID,
				"commission_amount", order.CommissionAmount.String(),
			)
		}
		result = order
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.enqueueStatusChanged(principal, result, fromStatus)
	}
	return result, nil
}

func (s *OrderService) enqueueStatusChanged(principal Principal, order *models.Order, fromStatus string) {
	if s.queueClient == nil || order == nil {
		return
	}
	payload := queue.OrderStatusChangedPayload{
		OrderID:    order.ID,
		LeaderID:   order.LeaderID,
		FromStatus: fromStatus,
		ToStatus:   order.Status,
		OperatorID: principal.UserID,
	}
	if order.IsSettled() {
		payload.CommissionAmount = order.CommissionAmount.String()
	}
	if err := s.queueClient.EnqueueOrderStatusChanged(payload); err != nil {
		logger.Warnw("order_enqueue_status_changed_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
}

// List 订单列表，团长只能查看自己的订单
func (s *OrderService) List(principal Principal, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	leaderID, err := principal.scopeLeaderID(filter.LeaderID)
	if err != nil {
		return nil, 0, err
	}
	filter.LeaderID = leaderID
	filter.Status = normalizeOrderStatus(filter.Status)
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.orderRepo.List(filter)
}

// Get 订单详情（含订单项）
func (s *OrderService) Get(principal Principal, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !principal.CanActOnLeader(order.LeaderID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// Stats 按状态汇总订单，并附带最近 7 天趋势
func (s *OrderService) Stats(principal Principal, input OrderStatsInput) (*OrderStats, error) {
	leaderID, err := principal.scopeLeaderID(input.LeaderID)
	if err != nil {
		return nil, err
	}
	filter := repository.OrderStatsFilter{
		LeaderID:    leaderID,
		CreatedFrom: input.CreatedFrom,
		CreatedTo:   input.CreatedTo,
	}
	rows, err := s.orderRepo.StatsByStatus(filter)
	if err != nil {
		return nil, err
	}

	stats := &OrderStats{
		TotalAmount: models.ZeroMoney(),
		ByStatus:    make([]OrderStatusStat, 0, len(rows)),
		Trend:       make([]OrderTrendPoint, 0, orderTrendDays),
	}
	for _, row := range rows {
		stats.TotalCount += row.Count
		if row.Status != constants.OrderStatusCancelled {
			stats.TotalAmount = stats.TotalAmount.Add(row.Amount)
		}
		stats.ByStatus = append(stats.ByStatus, OrderStatusStat{
			Status: row.Status,
			Count:  row.Count,
			Amount: row.Amount,
		})
	}

	now := time.Now()
	trendStart := startOfDay(now).AddDate(0, 0, -(orderTrendDays - 1))
	trendRows, err := s.orderRepo.DailyTrend(repository.OrderStatsFilter{
		LeaderID:    leaderID,
		CreatedFrom: &trendStart,
		CreatedTo:   &now,
	})
	if err != nil {
		return nil, err
	}
	stats.Trend = fillOrderTrend(trendStart, orderTrendDays, trendRows)
	return stats, nil
}

// fillOrderTrend 补齐没有订单的日期
func fillOrderTrend(start time.Time, days int, rows []repository.OrderTrendRow) []OrderTrendPoint {
	byDay := make(map[string]repository.OrderTrendRow, len(rows))
	for _, row := range rows {
		byDay[row.Day] = row
	}
	points := make([]OrderTrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format(deliveryDayLayout)
		point := OrderTrendPoint{Day: day, Amount: models.ZeroMoney()}
		if row, ok := byDay[day]; ok {
			point.Count = row.Count
			point.Amount = row.Amount
		}
		points = append(points, point)
	}
	return points
}

// DeliveryList 指定日期已确认或配送中订单的商品汇总
func (s *OrderService) DeliveryList(principal Principal, input DeliveryListInput) (*DeliveryList, error) {
	leaderID, err := principal.scopeLeaderID(input.LeaderID)
	if err != nil {
		return nil, err
	}
	dateText := strings.TrimSpace(input.Date)
	if dateText == "" {
		return nil, ErrDeliveryDateRequired
	}
	day, err := time.ParseInLocation(deliveryDayLayout, dateText, time.Local)
	if err != nil {
		return nil, ErrDeliveryDateRequired
	}
	groupBy := strings.ToLower(strings.TrimSpace(input.GroupBy))
	if groupBy == "" {
		groupBy = constants.DeliveryGroupByLeader
	}
	if groupBy != constants.DeliveryGroupByLeader && groupBy != constants.DeliveryGroupByCommunity {
		return nil, ErrInvalidGroupBy
	}

	rows, err := s.orderRepo.ListDeliveryItems(repository.DeliveryListFilter{
		DayStart: day,
		DayEnd:   day.AddDate(0, 0, 1),
		Statuses: []string{constants.OrderStatusConfirmed, constants.OrderStatusDelivering},
		LeaderID: leaderID,
	}, groupBy)
	if err != nil {
		return nil, err
	}

	return &DeliveryList{
		Date:    day.Format(deliveryDayLayout),
		GroupBy: groupBy,
		Groups:  groupDeliveryRows(rows),
	}, nil
}

func groupDeliveryRows(rows []repository.DeliveryItemRow) []DeliveryGroup {
	index := make(map[uint]int)
	groups := make([]DeliveryGroup, 0)
	for _, row := range rows {
		pos, ok := index[row.GroupID]
		if !ok {
			groups = append(groups, DeliveryGroup{GroupID: row.GroupID, GroupName: row.GroupName})
			pos = len(groups) - 1
			index[row.GroupID] = pos
		}
		groups[pos].TotalQuantity += row.Quantity
		groups[pos].Items = append(groups[pos].Items, DeliveryItem{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Unit:        row.Unit,
			Quantity:    row.Quantity,
			OrderCount:  row.OrderCount,
		})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].GroupID < groups[j].GroupID })
	return groups
}

// BatchDelete 批量删除待确认或已取消的订单，其余状态的订单会被跳过
func (s *OrderService) BatchDelete(principal Principal, ids []uint) (int64, error) {
	if !principal.IsAdmin() {
		return 0, ErrForbidden
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, ErrEmptySelection
	}
	deleted, err := s.orderRepo.DeleteByIDs(ids, deletableOrderStatuses())
	if err != nil {
		return 0, err
	}
	logger.Infow("order_batch_deleted",
		"operator_id", principal.UserID,
		"requested", len(ids),
		"deleted", deleted,
	)
	return deleted, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// isNotFound 统一判断仓储层未找到
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/groupbuy-next/internal/app"
	"github.com/groupbuy-next/internal/config"
	"github.com/groupbuy-next/internal/constants"
	"github.com/groupbuy-next/internal/logger"
	"github.com/groupbuy-next/internal/models"
	"github.com/groupbuy-next/internal/provider"
	"github.com/groupbuy-next/internal/service"

	"github.com/shopspring/decimal"
)

type seedLeader struct {
	Username string
	Name     string
	Phone    string
	Rate     string
}

type seedOrderLine struct {
	ProductIndex int
	Quantity     int
}

type seedOrder struct {
	LeaderIndex int
	Customer    string
	Phone       string
	Lines       []seedOrderLine
	// 依次推进到的状态
	Path []string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	db, err := app.OpenDatabase(cfg)
	if err != nil {
		stdLog.Fatalf("Failed to open database: %v", err)
	}
	container, err := provider.NewContainer(cfg, db)
	if err != nil {
		stdLog.Fatalf("Failed to init container: %v", err)
	}
	defer container.Close()
	if err := app.EnsureDefaultAdmin(cfg, container); err != nil {
		stdLog.Fatalf("Failed to init admin: %v", err)
	}
	admin, err := container.UserRepo.GetByUsername(cfg.Bootstrap.AdminUsername)
	if err != nil || admin == nil {
		stdLog.Fatalf("Admin account missing, set BOOTSTRAP_ADMIN_PASSWORD first: %v", err)
	}
	operator := service.Principal{UserID: admin.ID, Role: constants.RoleAdmin}

	// 社区
	var community models.Community
	if err := db.Where("name = ?", "阳光花园").First(&community).Error; err != nil {
		community = models.Community{
			Name:     "阳光花园",
			Address:  "幸福路 88 号",
			District: "高新区",
			Status:   constants.CommunityStatusActive,
		}
		if err := container.CommunityRepo.Create(&community); err != nil {
			stdLog.Fatalf("Failed to create community: %v", err)
		}
		stdLog.Printf("Created community: %s", community.Name)
	}

	// 商品
	products := []models.Product{
		{Name: "东北大米 5kg", Category: "粮油", Unit: "袋", Price: models.MustMoney("39.90"), Status: constants.ProductStatusActive},
		{Name: "土鸡蛋 30 枚", Category: "生鲜", Unit: "盒", Price: models.MustMoney("32.00"), Status: constants.ProductStatusActive},
		{Name: "赣南脐橙 5 斤", Category: "水果", Unit: "箱", Price: models.MustMoney("29.80"), Status: constants.ProductStatusActive},
		{Name: "纯牛奶 24 盒", Category: "乳品", Unit: "箱", Price: models.MustMoney("58.00"), Status: constants.ProductStatusActive},
	}
	for i := range products {
		var existing models.Product
		if err := db.Where("name = ?", products[i].Name).First(&existing).Error; err == nil {
			products[i] = existing
			continue
		}
		if err := container.ProductRepo.Create(&products[i]); err != nil {
			stdLog.Fatalf("Failed to create product %s: %v", products[i].Name, err)
		}
		stdLog.Printf("Created product: %s", products[i].Name)
	}

	// 团长
	leaderSeeds := []seedLeader{
		{Username: "leader_zhang", Name: "张团长", Phone: "13900000001", Rate: "12.00"},
		{Username: "leader_li", Name: "李团长", Phone: "13900000002", Rate: "15.00"},
	}
	leaders := make([]*models.Leader, 0, len(leaderSeeds))
	for _, item := range leaderSeeds {
		rate := models.MustMoney(item.Rate)
		leader, err := container.LeaderService.Create(service.LeaderCreateInput{
			Username:       item.Username,
			Password:       "leader123456",
			Name:           item.Name,
			Phone:          item.Phone,
			CommunityID:    &community.ID,
			CommissionRate: &rate,
		})
		if errors.Is(err, service.ErrLeaderExists) {
			user, lookupErr := container.UserRepo.GetByUsername(item.Username)
			if lookupErr != nil || user == nil {
				stdLog.Fatalf("Leader %s exists but account missing: %v", item.Username, lookupErr)
			}
			leader, err = container.LeaderRepo.GetByUserID(user.ID)
			if err == nil && leader == nil {
				err = service.ErrLeaderNotFound
			}
			stdLog.Printf("Leader already exists: %s", item.Username)
		} else if err == nil {
			stdLog.Printf("Created leader: %s (rate %s%%)", item.Name, item.Rate)
		}
		if err != nil {
			stdLog.Fatalf("Failed to prepare leader %s: %v", item.Username, err)
		}
		leaders = append(leaders, leader)
	}

	// 订单：只在没有订单时生成，避免重复结算
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		stdLog.Fatalf("Failed to count orders: %v", err)
	}
	if orderCount > 0 {
		stdLog.Printf("Orders already seeded (%d), skip", orderCount)
		return
	}

	orders := []seedOrder{
		{LeaderIndex: 0, Customer: "王女士", Phone: "13800000011", Lines: []seedOrderLine{{0, 1}, {1, 2}},
			Path: []string{constants.OrderStatusConfirmed, constants.OrderStatusDelivering, constants.OrderStatusPickup, constants.OrderStatusCompleted}},
		{LeaderIndex: 0, Customer: "赵先生", Phone: "13800000012", Lines: []seedOrderLine{{2, 3}},
			Path: []string{constants.OrderStatusConfirmed}},
		{LeaderIndex: 1, Customer: "孙阿姨", Phone: "13800000013", Lines: []seedOrderLine{{3, 1}, {2, 1}},
			Path: []string{constants.OrderStatusConfirmed, constants.OrderStatusDelivering, constants.OrderStatusPickup, constants.OrderStatusCompleted}},
		{LeaderIndex: 1, Customer: "周同学", Phone: "13800000014", Lines: []seedOrderLine{{1, 1}},
			Path: []string{constants.OrderStatusCancelled}},
		{LeaderIndex: 1, Customer: "吴女士", Phone: "13800000015", Lines: []seedOrderLine{{0, 2}}},
	}

	for i, item := range orders {
		leader := leaders[item.LeaderIndex]
		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(item.Lines))
		for _, line := range item.Lines {
			orderItem := models.NewOrderItem(products[line.ProductIndex], line.Quantity)
			total = total.Add(orderItem.Subtotal.Decimal)
			lines = append(lines, orderItem)
		}
		order := models.Order{
			OrderNo:          fmt.Sprintf("GB%s%04d", time.Now().Format("20060102"), i+1),
			LeaderID:         leader.ID,
			CommunityID:      leader.CommunityID,
			CustomerName:     item.Customer,
			CustomerPhone:    item.Phone,
			TotalAmount:      models.NewMoneyFromDecimal(total),
			CommissionAmount: models.ZeroMoney(),
			Status:           constants.OrderStatusPending,
		}
		if err := container.OrderRepo.Create(&order, lines); err != nil {
			stdLog.Fatalf("Failed to create order %s: %v", order.OrderNo, err)
		}
		for _, status := range item.Path {
			if _, err := container.OrderService.TransitionStatus(operator, order.ID, status); err != nil {
				stdLog.Fatalf("Failed to move order %s to %s: %v", order.OrderNo, status, err)
			}
		}
		stdLog.Printf("Created order: %s total=%s", order.OrderNo, order.TotalAmount.String())
	}

	stdLog.Printf("Seed finished")
}

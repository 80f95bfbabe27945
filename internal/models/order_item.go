package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem 订单项表，创建后不再修改
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                       // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                             // 订单ID
	ProductID    uint      `gorm:"index;not null" json:"product_id"`                           // 商品ID
	ProductName  string    `gorm:"type:varchar(100);not null" json:"product_name"`             // 商品名称快照
	ProductPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"product_price"` // 单价快照
	Quantity     int       `gorm:"not null" json:"quantity"`                                   // 数量
	Subtotal     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`      // 小计
	CreatedAt    time.Time `json:"created_at"`                                                 // 创建时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem 按商品快照构建订单项
func NewOrderItem(product Product, quantity int) OrderItem {
	subtotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(quantity)))
	return OrderItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
		Subtotal:     NewMoneyFromDecimal(subtotal),
	}
}

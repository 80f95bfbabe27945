package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表，订单只保存其快照
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`                               // 主键
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`             // 商品名称
	Category  string         `gorm:"type:varchar(50);index" json:"category"`             // 商品分类
	Unit      string         `gorm:"type:varchar(20);default:'份'" json:"unit"`           // 计量单位
	Price     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 销售价格
	Status    string         `gorm:"index;not null;default:'active'" json:"status"`      // 上架状态
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

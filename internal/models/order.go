package models

import "time"

// Order 订单表
type Order struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                           // 主键
	OrderNo          string     `gorm:"uniqueIndex;not null" json:"order_no"`                           // 订单编号
	LeaderID         uint       `gorm:"index;not null" json:"leader_id"`                                // 团长ID
	CommunityID      *uint      `gorm:"index" json:"community_id"`                                      // 社区ID
	CustomerName     string     `gorm:"type:varchar(50)" json:"customer_name"`                          // 客户姓名
	CustomerPhone    string     `gorm:"type:varchar(20);index" json:"customer_phone"`                   // 客户电话
	TotalAmount      Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`      // 订单金额
	CommissionAmount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"` // 结算佣金，结算前为 0
	Status           string     `gorm:"index;not null" json:"status"`                                   // 订单状态
	Remark           string     `gorm:"type:varchar(255)" json:"remark"`                                // 备注
	ConfirmedAt      *time.Time `json:"confirmed_at"`                                                   // 确认时间
	CompletedAt      *time.Time `gorm:"index" json:"completed_at"`                                      // 完成时间
	CancelledAt      *time.Time `json:"cancelled_at"`                                                   // 取消时间
	SettledAt        *time.Time `gorm:"index" json:"settled_at"`                                        // 佣金结算时间，非空即已结算
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                        // 更新时间

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
	Leader    *Leader     `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Community *Community  `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsSettled 是否已完成佣金结算
func (o *Order) IsSettled() bool {
	return o != nil && o.SettledAt != nil
}

package models

import "time"

// Commission 佣金流水表，仅追加；批量结算时允许 pending -> settled
type Commission struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                             // 主键
	LeaderID  uint       `gorm:"index;not null" json:"leader_id"`                                  // 团长ID
	OrderID   *uint      `gorm:"uniqueIndex:idx_commission_order_type" json:"order_id"`            // 订单ID，调整类为空
	Amount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`              // 金额，调整可为负
	Type      string     `gorm:"uniqueIndex:idx_commission_order_type;index;not null" json:"type"` // order / adjustment
	Status    string     `gorm:"index;not null" json:"status"`                                     // pending / settled
	Remark    string     `gorm:"type:varchar(255)" json:"remark"`                                  // 备注
	SettledAt *time.Time `json:"settled_at"`                                                       // 结算时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                                          // 创建时间

	Leader *Leader `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
	Order  *Order  `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}

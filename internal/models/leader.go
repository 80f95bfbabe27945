package models

import "time"

// Leader 团长表，余额与累计字段只允许通过仓储层的原子操作修改
type Leader struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                          // 主键
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`                           // 关联账号
	CommunityID     *uint     `gorm:"index" json:"community_id"`                                     // 所属社区
	Name            string    `gorm:"type:varchar(50)" json:"name"`                                  // 团长姓名
	Phone           string    `gorm:"type:varchar(20);uniqueIndex" json:"phone"`                     // 联系电话
	CommissionRate  Money     `gorm:"type:decimal(5,2);not null;default:12" json:"commission_rate"`  // 佣金比例（百分比）
	Balance         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`          // 可提现余额
	TotalOrders     int64     `gorm:"not null;default:0" json:"total_orders"`                        // 累计完成订单数
	TotalCommission Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_commission"` // 累计佣金
	Status          string    `gorm:"index;not null;default:'active'" json:"status"`                 // 状态 active / disabled
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time `json:"updated_at"`                                                    // 更新时间

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Community *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
}

// TableName 指定表名
func (Leader) TableName() string {
	return "leaders"
}

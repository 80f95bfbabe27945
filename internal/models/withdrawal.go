package models

import "time"

// Withdrawal 提现申请表
type Withdrawal struct {
	ID            uint       `gorm:"primarykey" json:"id"`                            // 主键
	LeaderID      uint       `gorm:"index;not null" json:"leader_id"`                 // 团长ID
	Amount        Money      `gorm:"type:decimal(20,2);not null" json:"amount"`       // 提现金额
	AccountName   string     `gorm:"type:varchar(50);not null" json:"account_name"`   // 收款户名
	AccountNumber string     `gorm:"type:varchar(64);not null" json:"account_number"` // 收款账号
	Status        string     `gorm:"index;not null" json:"status"`                    // pending / approved / rejected
	RejectReason  string     `gorm:"type:varchar(255)" json:"reject_reason"`          // 驳回原因
	ReviewedAt    *time.Time `json:"reviewed_at"`                                     // 审核时间
	ReviewedBy    *uint      `json:"reviewed_by"`                                     // 审核人
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                         // 申请时间
	UpdatedAt     time.Time  `json:"updated_at"`                                      // 更新时间

	Leader *Leader `gorm:"foreignKey:LeaderID" json:"leader,omitempty"`
}

// TableName 指定表名
func (Withdrawal) TableName() string {
	return "withdrawals"
}

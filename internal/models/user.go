package models

import (
	"time"

	"gorm.io/gorm"
)

// User 登录账号表（管理员与团长共用）
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`                 // 主键
	Username     string         `gorm:"uniqueIndex;not null" json:"username"` // 登录名
	PasswordHash string         `gorm:"not null" json:"-"`                    // 密码哈希（不返回给前端）
	Role         string         `gorm:"index;not null" json:"role"`           // 角色 admin / leader
	RealName     string         `gorm:"type:varchar(50)" json:"real_name"`    // 真实姓名
	Phone        string         `gorm:"type:varchar(20)" json:"phone"`        // 手机号
	Status       string         `gorm:"default:'active'" json:"status"`       // 账号状态
	TokenVersion uint64         `gorm:"not null;default:0" json:"-"`          // Token 版本（用于全量失效）
	LastLoginAt  *time.Time     `json:"last_login_at"`                        // 最后登录时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`              // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`              // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                       // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

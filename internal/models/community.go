package models

import (
	"time"

	"gorm.io/gorm"
)

// Community 社区表
type Community struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Address   string         `gorm:"type:varchar(200)" json:"address"`
	District  string         `gorm:"type:varchar(50);index" json:"district"`
	Status    string         `gorm:"not null;default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Community) TableName() string {
	return "communities"
}

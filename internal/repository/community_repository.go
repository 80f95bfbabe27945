package repository

import (
	"errors"

	"github.com/groupbuy-next/internal/models"

	"gorm.io/gorm"
)

// CommunityRepository 社区数据访问接口
type CommunityRepository interface {
	GetByID(id uint) (*models.Community, error)
	Create(community *models.Community) error
	ListAll() ([]models.Community, error)
}

// GormCommunityRepository GORM 实现
type GormCommunityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository 创建社区仓库
func NewCommunityRepository(db *gorm.DB) *GormCommunityRepository {
	return &GormCommunityRepository{db: db}
}

// GetByID 获取社区
func (r *GormCommunityRepository) GetByID(id uint) (*models.Community, error) {
	var community models.Community
	if err := r.db.First(&community, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &community, nil
}

// Create 创建社区
func (r *GormCommunityRepository) Create(community *models.Community) error {
	return r.db.Create(community).Error
}

// ListAll 全部社区
func (r *GormCommunityRepository) ListAll() ([]models.Community, error) {
	var rows []models.Community
	if err := r.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

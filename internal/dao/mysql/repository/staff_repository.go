package repository

import (
	"shop_chat_server/internal/model"

	"gorm.io/gorm"
)

type staffRepository struct {
	db *gorm.DB
}

// NewStaffRepository 创建 StaffRepository 实例
func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(staff *model.StaffUser) error {
	if err := r.db.Create(staff).Error; err != nil {
		return wrapDBErrorf(err, "创建客服账号 username=%s", staff.Username)
	}
	return nil
}

func (r *staffRepository) FindByUuid(uuid string) (*model.StaffUser, error) {
	var staff model.StaffUser
	if err := r.db.Where("uuid = ?", uuid).First(&staff).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询客服 uuid=%s", uuid)
	}
	return &staff, nil
}

func (r *staffRepository) FindByUsername(username string) (*model.StaffUser, error) {
	var staff model.StaffUser
	if err := r.db.Where("username = ?", username).First(&staff).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询客服 username=%s", username)
	}
	return &staff, nil
}

func (r *staffRepository) List() ([]model.StaffUser, error) {
	var staff []model.StaffUser
	if err := r.db.Order("id ASC").Find(&staff).Error; err != nil {
		return nil, wrapDBError(err, "查询客服列表")
	}
	return staff, nil
}

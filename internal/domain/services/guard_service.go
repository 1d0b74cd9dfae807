package services

import (
	"errors"

	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
	"guardian-http-service/pkg/utils"
)

// InterfaceGuardService defines the guard service interface
type InterfaceGuardService interface {
	GetAllGuards(page, pageSize int, search string) ([]models.Guard, int64, error)
	GetGuardByID(id uint) (*models.Guard, error)
	CreateGuard(guard *models.Guard) error
	UpdateGuard(id uint, updates map[string]interface{}) (*models.Guard, error)
	DeleteGuard(id uint) error
	AssignLocation(guardID uint, locationID *uint) (*models.Guard, error)
	GetGuardByIDWithLocation(id uint) (*models.Guard, error)
}

// GuardService 提供保安人员相关的服务
type GuardService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewGuardService 创建一个新的保安人员服务
func NewGuardService(db *gorm.DB, cfg *config.Config) InterfaceGuardService {
	return &GuardService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllGuards 获取所有保安人员，支持分页和搜索
func (s *GuardService) GetAllGuards(page, pageSize int, search string) ([]models.Guard, int64, error) {
	var guards []models.Guard
	var total int64

	query := s.DB.Model(&models.Guard{})

	// 如果有搜索关键词，添加搜索条件
	if search != "" {
		query = query.Where("name LIKE ? OR phone LIKE ? OR username LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&guards).Error; err != nil {
		return nil, 0, err
	}

	return guards, total, nil
}

// 2 GetGuardByID 根据ID获取保安人员
func (s *GuardService) GetGuardByID(id uint) (*models.Guard, error) {
	var guard models.Guard
	if err := s.DB.First(&guard, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("保安不存在")
		}
		return nil, err
	}
	return &guard, nil
}

// 3 CreateGuard 创建新保安人员
func (s *GuardService) CreateGuard(guard *models.Guard) error {
	// 验证手机号唯一性
	var count int64
	if guard.Phone != "" {
		if err := s.DB.Model(&models.Guard{}).Where("phone = ?", guard.Phone).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("手机号已被使用")
		}
	}

	// 验证用户名唯一性
	if err := s.DB.Model(&models.Guard{}).Where("username = ?", guard.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("用户名已存在")
	}

	// 分配了驻点时验证驻点存在
	if guard.LocationID != nil {
		var location models.Location
		if err := s.DB.First(&location, *guard.LocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("指定的驻点不存在")
			}
			return err
		}
	}

	// 密码哈希由模型钩子处理
	return s.DB.Create(guard).Error
}

// 4 UpdateGuard 更新保安人员信息
func (s *GuardService) UpdateGuard(id uint, updates map[string]interface{}) (*models.Guard, error) {
	guard, err := s.GetGuardByID(id)
	if err != nil {
		return nil, err
	}

	// 如果更新手机号，需要检查唯一性
	if phone, ok := updates["phone"].(string); ok && phone != guard.Phone {
		var count int64
		if err := s.DB.Model(&models.Guard{}).Where("phone = ? AND id != ?", phone, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("手机号已被其他保安使用")
		}
	}

	// 如果更新用户名，需要检查唯一性
	if username, ok := updates["username"].(string); ok && username != guard.Username {
		var count int64
		if err := s.DB.Model(&models.Guard{}).Where("username = ? AND id != ?", username, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("用户名已被其他保安使用")
		}
	}

	// 如果更新密码，需要进行哈希处理
	if password, ok := updates["password"].(string); ok {
		hashedPassword, err := utils.HashPassword(password)
		if err != nil {
			return nil, errors.New("密码加密失败")
		}
		updates["password"] = hashedPassword
	}

	if err := s.DB.Model(guard).Updates(updates).Error; err != nil {
		return nil, err
	}

	// 重新获取更新后的保安人员信息
	return s.GetGuardByID(id)
}

// 5 DeleteGuard 删除保安人员
func (s *GuardService) DeleteGuard(id uint) error {
	guard, err := s.GetGuardByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(guard).Error
}

// 6 AssignLocation 为保安分配值守驻点，传入nil表示取消分配。
// 未分配驻点的保安无法通过电子围栏校验.
func (s *GuardService) AssignLocation(guardID uint, locationID *uint) (*models.Guard, error) {
	guard, err := s.GetGuardByID(guardID)
	if err != nil {
		return nil, err
	}

	if locationID != nil {
		var location models.Location
		if err := s.DB.First(&location, *locationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("指定的驻点不存在")
			}
			return nil, err
		}
	}

	if err := s.DB.Model(guard).Update("location_id", locationID).Error; err != nil {
		return nil, err
	}

	return s.GetGuardByIDWithLocation(guardID)
}

// 7 GetGuardByIDWithLocation 获取保安信息及其值守驻点
func (s *GuardService) GetGuardByIDWithLocation(id uint) (*models.Guard, error) {
	var guard models.Guard
	if err := s.DB.Preload("Location").First(&guard, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("保安不存在")
		}
		return nil, err
	}
	return &guard, nil
}

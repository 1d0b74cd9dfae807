package services

import (
	"errors"

	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// InterfaceLocationService defines the location service interface
type InterfaceLocationService interface {
	GetAllLocations(page, pageSize int, search string) ([]models.Location, int64, error)
	GetLocationByID(id uint) (*models.Location, error)
	CreateLocation(location *models.Location) error
	UpdateLocation(id uint, updates map[string]interface{}) (*models.Location, error)
	DeleteLocation(id uint) error
	GetLocationGuards(locationID uint) ([]models.Guard, error)
}

// LocationService 提供值守驻点相关的服务。
// 驻点的坐标和围栏半径只影响之后的打卡校验，
// 历史考勤事件中记录的距离不会被追改.
type LocationService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewLocationService 创建一个新的驻点服务
func NewLocationService(db *gorm.DB, cfg *config.Config) InterfaceLocationService {
	return &LocationService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllLocations 获取所有驻点，支持分页和搜索
func (s *LocationService) GetAllLocations(page, pageSize int, search string) ([]models.Location, int64, error) {
	var locations []models.Location
	var total int64

	query := s.DB.Model(&models.Location{})

	// 如果有搜索关键词，添加搜索条件
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询
	offset := (page - 1) * pageSize
	if err := query.Limit(pageSize).Offset(offset).Find(&locations).Error; err != nil {
		return nil, 0, err
	}

	return locations, total, nil
}

// 2 GetLocationByID 根据ID获取驻点
func (s *LocationService) GetLocationByID(id uint) (*models.Location, error) {
	var location models.Location
	if err := s.DB.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("驻点不存在")
		}
		return nil, err
	}
	return &location, nil
}

// 3 CreateLocation 创建新驻点，坐标必须是有效的经纬度
func (s *LocationService) CreateLocation(location *models.Location) error {
	if !validCoordinate(location.Latitude, location.Longitude) {
		return errors.New("无效的经纬度坐标")
	}

	// 验证名称唯一性
	var count int64
	if err := s.DB.Model(&models.Location{}).Where("name = ?", location.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("驻点名称已存在")
	}

	return s.DB.Create(location).Error
}

// 4 UpdateLocation 更新驻点信息
func (s *LocationService) UpdateLocation(id uint, updates map[string]interface{}) (*models.Location, error) {
	location, err := s.GetLocationByID(id)
	if err != nil {
		return nil, err
	}

	// 更新坐标时验证有效性
	latitude := location.Latitude
	longitude := location.Longitude
	if lat, ok := updates["latitude"].(float64); ok {
		latitude = lat
	}
	if lon, ok := updates["longitude"].(float64); ok {
		longitude = lon
	}
	if !validCoordinate(latitude, longitude) {
		return nil, errors.New("无效的经纬度坐标")
	}

	// 如果更新名称，需要检查唯一性
	if name, ok := updates["name"].(string); ok && name != location.Name {
		var count int64
		if err := s.DB.Model(&models.Location{}).Where("name = ? AND id != ?", name, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("驻点名称已被使用")
		}
	}

	if err := s.DB.Model(location).Updates(updates).Error; err != nil {
		return nil, err
	}

	// 重新获取更新后的驻点信息
	return s.GetLocationByID(id)
}

// 5 DeleteLocation 删除驻点。仍有保安分配在该驻点时拒绝删除
func (s *LocationService) DeleteLocation(id uint) error {
	location, err := s.GetLocationByID(id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.DB.Model(&models.Guard{}).Where("location_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("仍有保安分配在该驻点，无法删除")
	}

	return s.DB.Delete(location).Error
}

// 6 GetLocationGuards 获取分配在该驻点的保安列表
func (s *LocationService) GetLocationGuards(locationID uint) ([]models.Guard, error) {
	// 检查驻点是否存在
	location, err := s.GetLocationByID(locationID)
	if err != nil {
		return nil, err
	}

	var guards []models.Guard
	if err := s.DB.Where("location_id = ?", location.ID).Find(&guards).Error; err != nil {
		return nil, err
	}

	return guards, nil
}

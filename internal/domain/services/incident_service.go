package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// InterfaceIncidentService defines the incident report service interface
type InterfaceIncidentService interface {
	GetAllIncidents(page, pageSize int, status string) ([]models.IncidentReport, int64, error)
	GetIncidentByID(id uint) (*models.IncidentReport, error)
	GetIncidentsByGuard(guardID uint, page, pageSize int) ([]models.IncidentReport, int64, error)
	CreateIncident(incident *models.IncidentReport) error
	CloseIncident(id uint) (*models.IncidentReport, error)
	DeleteIncident(id uint) error
}

// IncidentService 提供事件报告相关的服务
type IncidentService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewIncidentService 创建一个新的事件报告服务
func NewIncidentService(db *gorm.DB, cfg *config.Config) InterfaceIncidentService {
	return &IncidentService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllIncidents 获取所有事件报告，支持分页和状态筛选
func (s *IncidentService) GetAllIncidents(page, pageSize int, status string) ([]models.IncidentReport, int64, error) {
	var incidents []models.IncidentReport
	var total int64

	query := s.DB.Model(&models.IncidentReport{})

	// 按状态筛选
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询，最新的报告在前
	offset := (page - 1) * pageSize
	if err := query.Order("timestamp DESC").Limit(pageSize).Offset(offset).Find(&incidents).Error; err != nil {
		return nil, 0, err
	}

	return incidents, total, nil
}

// 2 GetIncidentByID 根据ID获取事件报告
func (s *IncidentService) GetIncidentByID(id uint) (*models.IncidentReport, error) {
	var incident models.IncidentReport
	if err := s.DB.First(&incident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("事件报告不存在")
		}
		return nil, err
	}
	return &incident, nil
}

// 3 GetIncidentsByGuard 获取指定保安提交的事件报告
func (s *IncidentService) GetIncidentsByGuard(guardID uint, page, pageSize int) ([]models.IncidentReport, int64, error) {
	var incidents []models.IncidentReport
	var total int64

	query := s.DB.Model(&models.IncidentReport{}).Where("guard_id = ?", guardID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("timestamp DESC").Limit(pageSize).Offset(offset).Find(&incidents).Error; err != nil {
		return nil, 0, err
	}

	return incidents, total, nil
}

// 4 CreateIncident 创建新事件报告
func (s *IncidentService) CreateIncident(incident *models.IncidentReport) error {
	// 验证提交人存在
	var guard models.Guard
	if err := s.DB.First(&guard, incident.GuardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("保安不存在")
		}
		return err
	}

	// 报告中冗余保安姓名，保安被删除后报告仍可读
	if incident.GuardName == "" {
		incident.GuardName = guard.Name
	}
	if incident.Timestamp.IsZero() {
		incident.Timestamp = time.Now()
	}
	if incident.Severity == "" {
		incident.Severity = models.IncidentSeverityLow
	}
	incident.Status = models.IncidentStatusOpen

	return s.DB.Create(incident).Error
}

// 5 CloseIncident 关闭事件报告，重复关闭不报错
func (s *IncidentService) CloseIncident(id uint) (*models.IncidentReport, error) {
	incident, err := s.GetIncidentByID(id)
	if err != nil {
		return nil, err
	}

	if incident.Status == models.IncidentStatusClosed {
		return incident, nil
	}

	if err := s.DB.Model(incident).Update("status", models.IncidentStatusClosed).Error; err != nil {
		return nil, err
	}

	return s.GetIncidentByID(id)
}

// 6 DeleteIncident 删除事件报告
func (s *IncidentService) DeleteIncident(id uint) error {
	incident, err := s.GetIncidentByID(id)
	if err != nil {
		return err
	}
	return s.DB.Delete(incident).Error
}

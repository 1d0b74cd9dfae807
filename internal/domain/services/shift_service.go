package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// ErrShiftConflict 同一保安同一天已存在排班
var ErrShiftConflict = errors.New("该保安当日已有排班")

// InterfaceShiftService defines the shift service interface
type InterfaceShiftService interface {
	GetShiftForDay(guardID uint, day string) (*models.Shift, error)
	GetShiftsByGuard(guardID uint) ([]models.Shift, error)
	GetAllShifts(page, pageSize int, day string) ([]models.Shift, int64, error)
	CreateShift(shift *models.Shift) error
	UpdateShift(id uint, updates map[string]interface{}) (*models.Shift, error)
	DeleteShift(id uint) error
	InShiftWindow(shift *models.Shift, now time.Time) bool
}

// ShiftService 提供排班相关服务
type ShiftService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewShiftService 创建一个新的排班服务
func NewShiftService(db *gorm.DB, cfg *config.Config) InterfaceShiftService {
	return &ShiftService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetShiftForDay 查询保安某一天的排班，没有排班时返回 (nil, nil)
func (s *ShiftService) GetShiftForDay(guardID uint, day string) (*models.Shift, error) {
	var shift models.Shift
	err := s.DB.Where("guard_id = ? AND day = ?", guardID, day).First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shift, nil
}

// 2 GetShiftsByGuard 查询保安的全部排班
func (s *ShiftService) GetShiftsByGuard(guardID uint) ([]models.Shift, error) {
	var shifts []models.Shift
	if err := s.DB.Where("guard_id = ?", guardID).Order("day ASC").Find(&shifts).Error; err != nil {
		return nil, err
	}
	return shifts, nil
}

// 3 GetAllShifts 获取所有排班，支持分页和按日期过滤
func (s *ShiftService) GetAllShifts(page, pageSize int, day string) ([]models.Shift, int64, error) {
	var shifts []models.Shift
	var total int64

	query := s.DB.Model(&models.Shift{})
	if day != "" {
		query = query.Where("day = ?", day)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Preload("Guard").Preload("Location").
		Order("day DESC").Limit(pageSize).Offset(offset).Find(&shifts).Error; err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

// 4 CreateShift 创建排班，同一保安同一天只允许一条
func (s *ShiftService) CreateShift(shift *models.Shift) error {
	if _, err := parseClock(shift.StartTime); err != nil {
		return err
	}
	if _, err := parseClock(shift.EndTime); err != nil {
		return err
	}

	var count int64
	if err := s.DB.Model(&models.Shift{}).
		Where("guard_id = ? AND day = ?", shift.GuardID, shift.Day).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrShiftConflict
	}

	return s.DB.Create(shift).Error
}

// 5 UpdateShift 更新排班信息
func (s *ShiftService) UpdateShift(id uint, updates map[string]interface{}) (*models.Shift, error) {
	var shift models.Shift
	if err := s.DB.First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("排班记录不存在")
		}
		return nil, err
	}

	// 校验更新的时间格式
	if startTime, ok := updates["start_time"].(string); ok {
		if _, err := parseClock(startTime); err != nil {
			return nil, err
		}
	}
	if endTime, ok := updates["end_time"].(string); ok {
		if _, err := parseClock(endTime); err != nil {
			return nil, err
		}
	}

	if err := s.DB.Model(&shift).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

// 6 DeleteShift 删除排班
func (s *ShiftService) DeleteShift(id uint) error {
	result := s.DB.Delete(&models.Shift{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("排班记录不存在")
	}
	return nil
}

// 7 InShiftWindow 判断当前时间是否落在排班时段内。
// 当日班: start <= now < end；跨夜班(end <= start): now >= start 或 now < end。
// now 由调用方注入，便于脱离真实时钟做单元测试.
func (s *ShiftService) InShiftWindow(shift *models.Shift, now time.Time) bool {
	if shift == nil {
		// 当天没有排班的保安不在任何排班时段内
		return false
	}

	start, err := parseClock(shift.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(shift.EndTime)
	if err != nil {
		return false
	}

	nowMinutes := now.Hour()*60 + now.Minute()

	if end > start {
		return nowMinutes >= start && nowMinutes < end
	}
	// 跨夜班，时段绕过午夜
	return nowMinutes >= start || nowMinutes < end
}

// parseClock 解析 "15:04" 格式的时刻，返回当日分钟数
func parseClock(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, errors.New("时间格式必须为 HH:MM")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, errors.New("小时取值必须在 0-23 之间")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, errors.New("分钟取值必须在 0-59 之间")
	}

	return hour*60 + minute, nil
}

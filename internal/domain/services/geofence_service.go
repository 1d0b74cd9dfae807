package services

import (
	"math"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// earthRadiusMeters 地球平均半径（米）
const earthRadiusMeters = 6371e3

// GeofenceResult 电子围栏校验结果
type GeofenceResult struct {
	Accepted bool    `json:"accepted"`
	Distance float64 `json:"distance"` // 实测距离（米）
	Radius   float64 `json:"radius"`   // 生效的围栏半径（米）
}

// InterfaceGeofenceService defines the geofence service interface
type InterfaceGeofenceService interface {
	Validate(latitude, longitude float64, location *models.Location) GeofenceResult
	Distance(lat1, lon1, lat2, lon2 float64) float64
}

// GeofenceService 提供电子围栏校验服务。校验是纯计算，
// 无副作用，相同输入永远得到相同结果.
type GeofenceService struct {
	defaultRadius float64 // 位置未设置半径时生效的围栏半径（米）
}

// NewGeofenceService 创建一个新的电子围栏服务，
// 默认围栏半径取配置值，配置缺失时回退到30米
func NewGeofenceService(cfg *config.Config) InterfaceGeofenceService {
	radius := models.DefaultGeofenceRadius
	if cfg != nil && cfg.GeofenceDefaultRadius > 0 {
		radius = cfg.GeofenceDefaultRadius
	}
	return &GeofenceService{defaultRadius: radius}
}

// Validate 校验上报坐标是否落在值守位置的围栏半径内。
// 边界取闭区间：距离等于半径视为在围栏内。
// 非法坐标（NaN或超出经纬度范围）直接拒绝，不作为错误抛出.
func (s *GeofenceService) Validate(latitude, longitude float64, location *models.Location) GeofenceResult {
	radius := location.EffectiveRadius(s.defaultRadius)

	if !validCoordinate(latitude, longitude) || !validCoordinate(location.Latitude, location.Longitude) {
		// 非法坐标下距离无从度量，记0而不是NaN——
		// 拒绝事件要落库(MySQL DOUBLE)、结果要序列化(JSON)，NaN两者都过不去
		return GeofenceResult{Accepted: false, Distance: 0, Radius: radius}
	}

	distance := s.Distance(latitude, longitude, location.Latitude, location.Longitude)
	return GeofenceResult{
		Accepted: distance <= radius,
		Distance: distance,
		Radius:   radius,
	}
}

// Distance 计算两点间的大圆距离（haversine公式），单位米。
// 不能用平面近似，半径较大时误差在极区和反经线附近会失控.
func (s *GeofenceService) Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	rLat1 := toRadians(lat1)
	rLat2 := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(rLat1)*math.Cos(rLat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// toRadians 角度转弧度
func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// validCoordinate 校验经纬度是否合法
func validCoordinate(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsNaN(longitude) {
		return false
	}
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

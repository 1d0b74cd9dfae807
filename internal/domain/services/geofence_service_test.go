package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

func TestGeofenceDistance(t *testing.T) {
	svc := NewGeofenceService(nil)

	// 赤道上经度相差0.001度约为111.19米
	d := svc.Distance(0, 0, 0, 0.001)
	assert.InDelta(t, 111.19, d, 0.5)

	// 同一点距离为0
	assert.Equal(t, 0.0, svc.Distance(39.9042, 116.4074, 39.9042, 116.4074))

	// 距离对称
	d1 := svc.Distance(39.9042, 116.4074, 39.9050, 116.4080)
	d2 := svc.Distance(39.9050, 116.4080, 39.9042, 116.4074)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestGeofenceValidateBoundary(t *testing.T) {
	svc := NewGeofenceService(nil)
	location := &models.Location{
		Name:      "东门岗亭",
		Latitude:  39.9042,
		Longitude: 116.4074,
	}

	// 上报点与值守位置约25米距离
	lat, lon := 39.90442, 116.4074
	distance := svc.Distance(lat, lon, location.Latitude, location.Longitude)

	tests := []struct {
		name     string
		radius   float64
		accepted bool
	}{
		{"well inside", distance + 10, true},
		{"exactly on boundary", distance, true}, // 边界取闭区间
		{"just outside", distance - 0.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location.Radius = tt.radius
			result := svc.Validate(lat, lon, location)
			assert.Equal(t, tt.accepted, result.Accepted)
			assert.InDelta(t, distance, result.Distance, 1e-9)
			assert.Equal(t, tt.radius, result.Radius)
		})
	}
}

func TestGeofenceValidateDefaultRadius(t *testing.T) {
	svc := NewGeofenceService(nil)

	// 未设置半径的位置使用默认30米围栏
	location := &models.Location{Latitude: 31.2304, Longitude: 121.4737}

	result := svc.Validate(31.2304, 121.4737, location)
	assert.True(t, result.Accepted)
	assert.Equal(t, models.DefaultGeofenceRadius, result.Radius)

	// 约78米外的点超出默认围栏
	far := svc.Validate(31.2311, 121.4737, location)
	assert.False(t, far.Accepted)
	assert.Greater(t, far.Distance, models.DefaultGeofenceRadius)
}

func TestGeofenceConfiguredDefaultRadius(t *testing.T) {
	// 配置的默认半径覆盖内置30米，只对未设置半径的位置生效
	svc := NewGeofenceService(&config.Config{GeofenceDefaultRadius: 100})
	location := &models.Location{Latitude: 31.2304, Longitude: 121.4737}

	// 约78米外的点落在100米围栏内
	result := svc.Validate(31.2311, 121.4737, location)
	assert.True(t, result.Accepted)
	assert.Equal(t, 100.0, result.Radius)

	// 位置自身的半径优先于配置默认值
	location.Radius = 20
	narrowed := svc.Validate(31.2311, 121.4737, location)
	assert.False(t, narrowed.Accepted)
	assert.Equal(t, 20.0, narrowed.Radius)
}

func TestGeofenceValidateInvalidCoordinates(t *testing.T) {
	svc := NewGeofenceService(nil)
	location := &models.Location{Latitude: 39.9042, Longitude: 116.4074, Radius: 100}

	tests := []struct {
		name string
		lat  float64
		lon  float64
	}{
		{"NaN latitude", math.NaN(), 116.4074},
		{"NaN longitude", 39.9042, math.NaN()},
		{"latitude above 90", 90.01, 116.4074},
		{"latitude below -90", -90.01, 116.4074},
		{"longitude above 180", 39.9042, 180.01},
		{"longitude below -180", 39.9042, -180.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 非法坐标直接拒绝，不作为错误抛出。
			// 距离记0而不是NaN，保证拒绝事件可落库、结果可序列化
			result := svc.Validate(tt.lat, tt.lon, location)
			assert.False(t, result.Accepted)
			assert.Equal(t, 0.0, result.Distance)
		})
	}
}

func TestGeofenceValidateInvalidLocation(t *testing.T) {
	svc := NewGeofenceService(nil)

	// 值守位置自身坐标非法时同样拒绝
	location := &models.Location{Latitude: 91, Longitude: 116.4074, Radius: 100}
	result := svc.Validate(39.9042, 116.4074, location)
	assert.False(t, result.Accepted)
	assert.Equal(t, 0.0, result.Distance)
}

func TestGeofenceBoundaryEdges(t *testing.T) {
	svc := NewGeofenceService(nil)
	location := &models.Location{Latitude: 90, Longitude: 0, Radius: 50}

	// 极点坐标合法，照常校验
	result := svc.Validate(90, 180, location)
	assert.True(t, result.Accepted)
	assert.InDelta(t, 0, result.Distance, 1e-6)
}

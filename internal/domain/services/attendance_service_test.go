package services

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian-http-service/internal/domain/models"
)

// fakeEventLogStore 内存版事件日志存储，只追加
type fakeEventLogStore struct {
	events       []models.AttendanceEvent
	appendErr    error
	lastPage     int
	lastPageSize int
}

func (f *fakeEventLogStore) AppendEvent(event *models.AttendanceEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventLogStore) ReadEvents(guardID uint) ([]models.AttendanceEvent, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	var out []models.AttendanceEvent
	for _, e := range f.events {
		if e.GuardID == guardID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventLogStore) ReadEventsPage(guardID uint, page, pageSize int) ([]models.AttendanceEvent, int64, error) {
	f.lastPage = page
	f.lastPageSize = pageSize
	events, err := f.ReadEvents(guardID)
	return events, int64(len(events)), err
}

func attendanceFixture(store InterfaceEventLogStore) *AttendanceService {
	return &AttendanceService{Store: store}
}

func TestIsOnDutyFromEventLog(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	store := &fakeEventLogStore{}
	svc := attendanceFixture(store)

	// 没有任何事件时不在岗
	onDuty, err := svc.IsOnDuty(7)
	require.NoError(t, err)
	assert.False(t, onDuty)

	// 成功上岗后在岗
	store.events = append(store.events, models.AttendanceEvent{
		GuardID: 7, Kind: models.EventKindClockIn, Timestamp: now, Outcome: models.EventOutcomeSuccess,
	})
	onDuty, err = svc.IsOnDuty(7)
	require.NoError(t, err)
	assert.True(t, onDuty)

	// 失败的下岗打卡不改变状态
	store.events = append(store.events, models.AttendanceEvent{
		GuardID: 7, Kind: models.EventKindClockOut, Timestamp: now.Add(time.Hour), Outcome: models.EventOutcomeFailed,
	})
	onDuty, err = svc.IsOnDuty(7)
	require.NoError(t, err)
	assert.True(t, onDuty)

	// 成功下岗后回到不在岗
	store.events = append(store.events, models.AttendanceEvent{
		GuardID: 7, Kind: models.EventKindClockOut, Timestamp: now.Add(2 * time.Hour), Outcome: models.EventOutcomeSuccess,
	})
	onDuty, err = svc.IsOnDuty(7)
	require.NoError(t, err)
	assert.False(t, onDuty)

	// 其他保安的事件不串扰
	onDuty, err = svc.IsOnDuty(8)
	require.NoError(t, err)
	assert.False(t, onDuty)
}

func TestIsOnDutyStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := attendanceFixture(&fakeEventLogStore{appendErr: storeErr})

	_, err := svc.IsOnDuty(7)
	assert.ErrorIs(t, err, storeErr)
}

func TestGetEventsClampsPagination(t *testing.T) {
	store := &fakeEventLogStore{}
	svc := attendanceFixture(store)

	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"defaults applied", 0, 0, 1, 20},
		{"negative page", -3, 10, 1, 10},
		{"oversized page size", 2, 500, 2, 20},
		{"valid passthrough", 3, 50, 3, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.GetEvents(7, tt.page, tt.pageSize)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, store.lastPage)
			assert.Equal(t, tt.wantPageSize, store.lastPageSize)
		})
	}
}

func TestRecordRejectedPersistsFailedEvent(t *testing.T) {
	store := &fakeEventLogStore{}
	svc := attendanceFixture(store)

	locationID := uint(3)
	guard := &models.Guard{ID: 7, Name: "张伟", LocationID: &locationID}
	location := &models.Location{ID: 3, Name: "东门岗亭"}
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)

	result, err := svc.recordRejected(guard, location, models.EventKindClockIn, now, 39.9, 116.4, 52.3, RejectReasonGeofence)
	require.NoError(t, err)

	// 策略拒绝不是错误：失败事件照常落库并返回拒绝结果
	assert.False(t, result.Accepted)
	assert.Equal(t, RejectReasonGeofence, result.RejectReason)
	assert.Equal(t, models.EventKindClockIn, result.Action)
	assert.Equal(t, 52.3, result.Distance)

	require.Len(t, store.events, 1)
	stored := store.events[0]
	assert.Equal(t, models.EventOutcomeFailed, stored.Outcome)
	assert.Equal(t, RejectReasonGeofence, stored.Reason)
	assert.Equal(t, "张伟", stored.GuardName)
	assert.Equal(t, "东门岗亭", stored.LocationLabel)
	assert.NotEmpty(t, stored.EventID)

	// 失败事件不改变在岗状态
	onDuty, err := svc.IsOnDuty(7)
	require.NoError(t, err)
	assert.False(t, onDuty)
}

func TestRecordRejectedCheckIn(t *testing.T) {
	store := &fakeEventLogStore{}
	svc := attendanceFixture(store)

	locationID := uint(3)
	guard := &models.Guard{ID: 7, Name: "张伟", LocationID: &locationID}
	location := &models.Location{ID: 3, Name: "东门岗亭"}
	now := time.Now()

	result, err := svc.recordRejectedCheckIn(guard, location, now, 39.9, 116.4, 88.0)
	require.NoError(t, err)
	assert.False(t, result.Accepted)
	assert.Equal(t, models.EventKindCheckIn, result.Action)
	assert.Equal(t, RejectReasonGeofence, result.RejectReason)
	require.Len(t, store.events, 1)
	assert.Equal(t, models.EventKindCheckIn, store.events[0].Kind)
}

func TestRecordRejectedStoreUnavailable(t *testing.T) {
	storeErr := errors.New("store down")
	svc := attendanceFixture(&fakeEventLogStore{appendErr: storeErr})

	guard := &models.Guard{ID: 7, Name: "张伟"}
	location := &models.Location{ID: 3, Name: "东门岗亭"}

	// 存储不可用时连失败事件都写不进去，整个操作报错，调用方重试
	result, err := svc.recordRejected(guard, location, models.EventKindClockIn, time.Now(), 0, 0, 0, RejectReasonShiftWindow)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, storeErr)
}

func TestRecordRejectedInvalidCoordinateDistance(t *testing.T) {
	store := &fakeEventLogStore{}
	svc := attendanceFixture(store)
	geofence := NewGeofenceService(nil)

	locationID := uint(3)
	guard := &models.Guard{ID: 7, Name: "张伟", LocationID: &locationID}
	location := &models.Location{ID: 3, Name: "东门岗亭", Latitude: 39.9042, Longitude: 116.4074, Radius: 100}

	// 纬度91非法，围栏校验拒绝且距离记0
	check := geofence.Validate(91, 116.4074, location)
	require.False(t, check.Accepted)

	result, err := svc.recordRejected(guard, location, models.EventKindClockIn, time.Now(), 91, 116.4074, check.Distance, RejectReasonGeofence)
	require.NoError(t, err)
	assert.False(t, result.Accepted)

	// 距离必须可落库可序列化：NaN写不进MySQL的DOUBLE列，也编不成JSON
	require.Len(t, store.events, 1)
	assert.False(t, math.IsNaN(store.events[0].Distance))
	assert.Equal(t, 0.0, store.events[0].Distance)

	_, err = json.Marshal(result)
	assert.NoError(t, err)
}

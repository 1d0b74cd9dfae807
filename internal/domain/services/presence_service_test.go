package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian-http-service/internal/domain/models"
	"guardian-http-service/internal/infrastructure/config"
)

// presenceFixture 返回用于状态推导测试的服务和保安。
// 推导是纯函数，不需要数据库、Redis或MQTT.
func presenceFixture() (*PresenceService, *models.Guard) {
	locationID := uint(3)
	svc := &PresenceService{
		Config: &config.Config{CheckInIntervalMinutes: 60},
	}
	guard := &models.Guard{
		ID:         7,
		Name:       "张伟",
		LocationID: &locationID,
	}
	return svc, guard
}

func event(kind models.EventKind, at time.Time, outcome models.EventOutcome) models.AttendanceEvent {
	return models.AttendanceEvent{
		GuardID:   7,
		Kind:      kind,
		Timestamp: at,
		Outcome:   outcome,
	}
}

func TestDeriveStatusOffDuty(t *testing.T) {
	svc, guard := presenceFixture()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	t.Run("no events", func(t *testing.T) {
		status := svc.DeriveStatus(guard, nil, nil, now)
		assert.Equal(t, models.PresenceOffDuty, status.State)
		assert.False(t, status.OnDuty())
		assert.Nil(t, status.LoginTime)
		assert.Nil(t, status.NextCheckInDue)
	})

	t.Run("failed clock-in does not change state", func(t *testing.T) {
		events := []models.AttendanceEvent{
			event(models.EventKindClockIn, now.Add(-time.Hour), models.EventOutcomeFailed),
		}
		status := svc.DeriveStatus(guard, events, nil, now)
		assert.Equal(t, models.PresenceOffDuty, status.State)
	})

	t.Run("clock-out after clock-in", func(t *testing.T) {
		events := []models.AttendanceEvent{
			event(models.EventKindClockIn, now.Add(-2*time.Hour), models.EventOutcomeSuccess),
			event(models.EventKindClockOut, now.Add(-time.Hour), models.EventOutcomeSuccess),
		}
		status := svc.DeriveStatus(guard, events, nil, now)
		assert.Equal(t, models.PresenceOffDuty, status.State)
	})

	t.Run("same timestamp clock-out wins", func(t *testing.T) {
		at := now.Add(-time.Hour)
		events := []models.AttendanceEvent{
			event(models.EventKindClockIn, at, models.EventOutcomeSuccess),
			event(models.EventKindClockOut, at, models.EventOutcomeSuccess),
		}
		status := svc.DeriveStatus(guard, events, nil, now)
		assert.Equal(t, models.PresenceOffDuty, status.State)
	})
}

func TestDeriveStatusOnTimeAndLate(t *testing.T) {
	svc, guard := presenceFixture()
	shift := &models.Shift{
		GuardID:   guard.ID,
		Day:       "2026-03-10",
		StartTime: "08:00",
		EndTime:   "16:00",
	}

	t.Run("clock-in at shift start is on time", func(t *testing.T) {
		clockIn := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
		now := clockIn.Add(10 * time.Minute)
		events := []models.AttendanceEvent{
			event(models.EventKindClockIn, clockIn, models.EventOutcomeSuccess),
		}
		status := svc.DeriveStatus(guard, events, shift, now)
		assert.Equal(t, models.PresenceOnTime, status.State)
		require.NotNil(t, status.LoginTime)
		assert.Equal(t, clockIn, *status.LoginTime)
		require.NotNil(t, status.NextCheckInDue)
		assert.Equal(t, clockIn.Add(60*time.Minute), *status.NextCheckInDue)
		assert.Equal(t, guard.LocationID, status.LocationID)
	})

	t.Run("clock-in after shift start is late", func(t *testing.T) {
		clockIn := time.Date(2026, 3, 10, 8, 5, 0, 0, time.Local)
		now := clockIn.Add(10 * time.Minute)
		events := []models.AttendanceEvent{
			event(models.EventKindClockIn, clockIn, models.EventOutcomeSuccess),
		}
		status := svc.DeriveStatus(guard, events, shift, now)
		assert.Equal(t, models.PresenceLate, status.State)
		assert.Equal(t, 5, status.LateMinutes)
	})

	t.Run("no shift means no lateness", func(t *testing.T) {
		clockIn := time.Date(2026, 3, 10, 11, 0, 0, 0, time.Local)
		events := []models.AttendanceEvent{
			event(models.EventKindClockIn, clockIn, models.EventOutcomeSuccess),
		}
		status := svc.DeriveStatus(guard, events, nil, clockIn.Add(time.Minute))
		assert.Equal(t, models.PresenceOnTime, status.State)
	})
}

func TestDeriveStatusMissedCheckIn(t *testing.T) {
	svc, guard := presenceFixture()
	clockIn := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	base := []models.AttendanceEvent{
		event(models.EventKindClockIn, clockIn, models.EventOutcomeSuccess),
	}

	t.Run("interval elapsed without check-in", func(t *testing.T) {
		status := svc.DeriveStatus(guard, base, nil, clockIn.Add(90*time.Minute))
		assert.Equal(t, models.PresenceMissedCheckIn, status.State)
	})

	t.Run("exactly at deadline is missed", func(t *testing.T) {
		status := svc.DeriveStatus(guard, base, nil, clockIn.Add(60*time.Minute))
		assert.Equal(t, models.PresenceMissedCheckIn, status.State)
	})

	t.Run("check-in resets the deadline", func(t *testing.T) {
		events := append([]models.AttendanceEvent{}, base...)
		events = append(events, event(models.EventKindCheckIn, clockIn.Add(30*time.Minute), models.EventOutcomeSuccess))

		status := svc.DeriveStatus(guard, events, nil, clockIn.Add(60*time.Minute))
		assert.Equal(t, models.PresenceOnTime, status.State)
		require.NotNil(t, status.NextCheckInDue)
		assert.Equal(t, clockIn.Add(90*time.Minute), *status.NextCheckInDue)

		// 截止时间过后仍未再签到则漏检
		status = svc.DeriveStatus(guard, events, nil, clockIn.Add(90*time.Minute))
		assert.Equal(t, models.PresenceMissedCheckIn, status.State)

		// 再补一次签到又回到正常
		events = append(events, event(models.EventKindCheckIn, clockIn.Add(85*time.Minute), models.EventOutcomeSuccess))
		status = svc.DeriveStatus(guard, events, nil, clockIn.Add(90*time.Minute))
		assert.Equal(t, models.PresenceOnTime, status.State)
	})

	t.Run("failed check-in does not reset", func(t *testing.T) {
		events := append([]models.AttendanceEvent{}, base...)
		events = append(events, event(models.EventKindCheckIn, clockIn.Add(30*time.Minute), models.EventOutcomeFailed))

		status := svc.DeriveStatus(guard, events, nil, clockIn.Add(60*time.Minute))
		assert.Equal(t, models.PresenceMissedCheckIn, status.State)
	})

	t.Run("check-in before clock-in is ignored", func(t *testing.T) {
		// 上一班次的历史签到不能延后本班的截止时间
		events := []models.AttendanceEvent{
			event(models.EventKindCheckIn, clockIn.Add(-10*time.Minute), models.EventOutcomeSuccess),
			event(models.EventKindClockIn, clockIn, models.EventOutcomeSuccess),
		}
		status := svc.DeriveStatus(guard, events, nil, clockIn.Add(60*time.Minute))
		assert.Equal(t, models.PresenceMissedCheckIn, status.State)
	})

	t.Run("missed takes priority over late", func(t *testing.T) {
		shift := &models.Shift{Day: "2026-03-10", StartTime: "07:00", EndTime: "16:00"}
		status := svc.DeriveStatus(guard, base, shift, clockIn.Add(2*time.Hour))
		assert.Equal(t, models.PresenceMissedCheckIn, status.State)
	})
}

func TestDeriveStatusUnsortedEvents(t *testing.T) {
	svc, guard := presenceFixture()
	clockIn := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)

	// 乱序输入与降序输入推导出相同状态
	events := []models.AttendanceEvent{
		event(models.EventKindCheckIn, clockIn.Add(30*time.Minute), models.EventOutcomeSuccess),
		event(models.EventKindClockOut, clockIn.Add(-2*time.Hour), models.EventOutcomeSuccess),
		event(models.EventKindClockIn, clockIn, models.EventOutcomeSuccess),
		event(models.EventKindClockIn, clockIn.Add(-3*time.Hour), models.EventOutcomeSuccess),
	}

	status := svc.DeriveStatus(guard, events, nil, clockIn.Add(40*time.Minute))
	assert.Equal(t, models.PresenceOnTime, status.State)
	require.NotNil(t, status.LoginTime)
	assert.Equal(t, clockIn, *status.LoginTime)
}

func TestOnDutyFromEvents(t *testing.T) {
	at := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		events []models.AttendanceEvent
		onDuty bool
	}{
		{"empty", nil, false},
		{
			"single clock-in",
			[]models.AttendanceEvent{event(models.EventKindClockIn, at, models.EventOutcomeSuccess)},
			true,
		},
		{
			"clock-in then clock-out",
			[]models.AttendanceEvent{
				event(models.EventKindClockOut, at.Add(time.Hour), models.EventOutcomeSuccess),
				event(models.EventKindClockIn, at, models.EventOutcomeSuccess),
			},
			false,
		},
		{
			"re-entry after clock-out",
			[]models.AttendanceEvent{
				event(models.EventKindClockIn, at.Add(2*time.Hour), models.EventOutcomeSuccess),
				event(models.EventKindClockOut, at.Add(time.Hour), models.EventOutcomeSuccess),
				event(models.EventKindClockIn, at, models.EventOutcomeSuccess),
			},
			true,
		},
		{
			"only failed events",
			[]models.AttendanceEvent{event(models.EventKindClockIn, at, models.EventOutcomeFailed)},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.onDuty, onDutyFromEvents(sortEventsDesc(tt.events)))
		})
	}
}

func TestSnapshotBeforeFirstSweep(t *testing.T) {
	svc, _ := presenceFixture()

	// 尚未重算过时返回空快照而不是nil
	snapshot := svc.Snapshot()
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(0), snapshot.Version)
	assert.Empty(t, snapshot.Guards)
}

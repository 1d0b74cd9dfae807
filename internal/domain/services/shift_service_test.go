package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"guardian-http-service/internal/domain/models"
)

// clockAt 构造指定时刻的时间，日期部分不影响时段判断
func clockAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.Local)
}

func TestInShiftWindowDayShift(t *testing.T) {
	svc := &ShiftService{}
	shift := &models.Shift{StartTime: "08:00", EndTime: "16:00"}

	tests := []struct {
		name   string
		now    time.Time
		within bool
	}{
		{"before start", clockAt(7, 59), false},
		{"at start", clockAt(8, 0), true},
		{"midday", clockAt(12, 0), true},
		{"just before end", clockAt(15, 59), true},
		{"at end", clockAt(16, 0), false}, // 结束时刻不含
		{"after end", clockAt(20, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.within, svc.InShiftWindow(shift, tt.now))
		})
	}
}

func TestInShiftWindowOvernight(t *testing.T) {
	svc := &ShiftService{}
	// 22:00-06:00 跨夜班，时段绕过午夜
	shift := &models.Shift{StartTime: "22:00", EndTime: "06:00"}

	tests := []struct {
		name   string
		now    time.Time
		within bool
	}{
		{"before start", clockAt(21, 59), false},
		{"at start", clockAt(22, 0), true},
		{"before midnight", clockAt(23, 30), true},
		{"after midnight", clockAt(2, 0), true},
		{"just before end", clockAt(5, 59), true},
		{"at end", clockAt(6, 0), false},
		{"midday", clockAt(12, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.within, svc.InShiftWindow(shift, tt.now))
		})
	}

	assert.True(t, shift.IsOvernight())
}

func TestInShiftWindowDegenerate(t *testing.T) {
	svc := &ShiftService{}

	// 没有排班的保安不在任何时段内
	assert.False(t, svc.InShiftWindow(nil, clockAt(12, 0)))

	// 起止时刻相同按跨夜处理，覆盖全天
	fullDay := &models.Shift{StartTime: "08:00", EndTime: "08:00"}
	assert.True(t, svc.InShiftWindow(fullDay, clockAt(7, 59)))
	assert.True(t, svc.InShiftWindow(fullDay, clockAt(8, 0)))
	assert.True(t, svc.InShiftWindow(fullDay, clockAt(23, 0)))

	// 非法时间格式视为不在时段内
	broken := &models.Shift{StartTime: "8am", EndTime: "16:00"}
	assert.False(t, svc.InShiftWindow(broken, clockAt(12, 0)))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		value   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:05", 485, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"-1:30", 0, true},
		{"1230", 0, true},
		{"12:30:00", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			minutes, err := parseClock(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.minutes, minutes)
		})
	}
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missedRecord 一次漏检回调
type missedRecord struct {
	guardID  uint
	deadline time.Time
}

// newTestScheduler 返回短间隔调度器和漏检回调通道
func newTestScheduler(interval time.Duration) (*CheckInScheduler, chan missedRecord) {
	missed := make(chan missedRecord, 16)
	s := NewCheckInScheduler(interval, func(guardID uint, deadline time.Time) {
		missed <- missedRecord{guardID: guardID, deadline: deadline}
	})
	return s, missed
}

func TestSchedulerArmSetsDeadline(t *testing.T) {
	s, _ := newTestScheduler(time.Hour)
	defer s.Stop()

	base := time.Now()
	s.Arm(9, base)

	due, ok := s.NextDue(9)
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Hour), due)

	// 未设定截止时间的保安查询不到
	_, ok = s.NextDue(10)
	assert.False(t, ok)
}

func TestSchedulerExpireFiresAndRearms(t *testing.T) {
	s, missed := newTestScheduler(40 * time.Millisecond)
	defer s.Stop()

	base := time.Now()
	s.Arm(9, base)

	// 不签到则在截止时间触发漏检回调
	select {
	case rec := <-missed:
		assert.Equal(t, uint(9), rec.guardID)
		assert.Equal(t, base.Add(40*time.Millisecond), rec.deadline)
	case <-time.After(2 * time.Second):
		t.Fatal("漏检回调未触发")
	}

	// 超时后自动重新起算，下一个周期再次触发
	select {
	case rec := <-missed:
		assert.Equal(t, base.Add(80*time.Millisecond), rec.deadline)
	case <-time.After(2 * time.Second):
		t.Fatal("漏检回调未重新起算")
	}
}

func TestSchedulerConfirmResetsDeadline(t *testing.T) {
	s, missed := newTestScheduler(80 * time.Millisecond)
	defer s.Stop()

	base := time.Now()
	s.Arm(9, base)

	// 在截止时间前确认，截止时间以签到时间为基准重新起算
	at := base.Add(20 * time.Millisecond)
	s.Confirm(9, at)

	due, ok := s.NextDue(9)
	require.True(t, ok)
	assert.Equal(t, at.Add(80*time.Millisecond), due)

	// 原定截止时间过后不应触发作废计时器的回调
	select {
	case rec := <-missed:
		assert.Equal(t, at.Add(80*time.Millisecond), rec.deadline)
	case <-time.After(2 * time.Second):
		t.Fatal("确认后的新计时器未触发")
	}
}

func TestSchedulerConfirmWithoutArm(t *testing.T) {
	s, missed := newTestScheduler(30 * time.Millisecond)
	defer s.Stop()

	// 未上岗的签到不启动计时
	s.Confirm(9, time.Now())
	_, ok := s.NextDue(9)
	assert.False(t, ok)

	select {
	case <-missed:
		t.Fatal("未设定截止时间不应触发回调")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerDisarmCancels(t *testing.T) {
	s, missed := newTestScheduler(30 * time.Millisecond)
	defer s.Stop()

	s.Arm(9, time.Now())
	s.Disarm(9)

	_, ok := s.NextDue(9)
	assert.False(t, ok)

	select {
	case <-missed:
		t.Fatal("撤销后不应触发回调")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestSchedulerRearmAfterDisarm(t *testing.T) {
	s, missed := newTestScheduler(30 * time.Millisecond)
	defer s.Stop()

	// 下岗再上岗，旧代次的计时器回调作废，新计时器照常触发
	s.Arm(9, time.Now())
	s.Disarm(9)

	base := time.Now()
	s.Arm(9, base)

	select {
	case rec := <-missed:
		assert.Equal(t, base.Add(30*time.Millisecond), rec.deadline)
	case <-time.After(2 * time.Second):
		t.Fatal("重新上岗后的计时器未触发")
	}
}

func TestSchedulerIndependentGuards(t *testing.T) {
	s, missed := newTestScheduler(30 * time.Millisecond)
	defer s.Stop()

	// 撤销一个保安的计时不影响另一个
	s.Arm(1, time.Now())
	base := time.Now()
	s.Arm(2, base)
	s.Disarm(1)

	select {
	case rec := <-missed:
		assert.Equal(t, uint(2), rec.guardID)
	case <-time.After(2 * time.Second):
		t.Fatal("保安2的计时器未触发")
	}
}

func TestSchedulerStop(t *testing.T) {
	s, missed := newTestScheduler(30 * time.Millisecond)

	s.Arm(9, time.Now())
	s.Stop()

	_, ok := s.NextDue(9)
	assert.False(t, ok)

	select {
	case <-missed:
		t.Fatal("停止后不应触发回调")
	case <-time.After(100 * time.Millisecond):
	}

	// 停止后的操作全部为空操作
	s.Arm(9, time.Now())
	_, ok = s.NextDue(9)
	assert.False(t, ok)
}

func TestSchedulerInvalidInterval(t *testing.T) {
	s := NewCheckInScheduler(0, nil)
	defer s.Stop()

	base := time.Now()
	s.Arm(9, base)

	// 非法间隔回退到默认60分钟
	due, ok := s.NextDue(9)
	require.True(t, ok)
	assert.Equal(t, base.Add(60*time.Minute), due)
}

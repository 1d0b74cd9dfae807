package services

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian-http-service/internal/domain/models"
)

func TestPanicLocalVersionMonotonic(t *testing.T) {
	s := &PanicAlertService{}

	// Redis不可用时版本号本地递增，仍然严格单调
	var last int64
	for i := 0; i < 10; i++ {
		version := s.nextVersion()
		assert.Greater(t, version, last)
		last = version
	}

	// 最近分配的版本被记录，供全量读取返回
	assert.Equal(t, last, atomic.LoadInt64(&s.version))
}

func TestPanicSubscribeAndNotify(t *testing.T) {
	s := &PanicAlertService{}

	ch := s.Subscribe("dashboard-1")
	s.notifySubscribers(PanicNotification{
		Type:    PanicNotifyAlert,
		Version: 3,
		Alerts:  []models.PanicAlert{{AlertID: "a-1", GuardName: "张伟"}},
	})

	select {
	case got := <-ch:
		assert.Equal(t, PanicNotifyAlert, got.Type)
		assert.Equal(t, int64(3), got.Version)
		require.Len(t, got.Alerts, 1)
		assert.Equal(t, "a-1", got.Alerts[0].AlertID)
	default:
		t.Fatal("订阅者未收到通知")
	}
}

func TestPanicNotifyMultipleSubscribers(t *testing.T) {
	s := &PanicAlertService{}

	ch1 := s.Subscribe("observer-1")
	ch2 := s.Subscribe("observer-2")

	s.notifySubscribers(PanicNotification{Type: PanicNotifyClear, Version: 5})

	assert.Len(t, ch1, 1)
	assert.Len(t, ch2, 1)
}

func TestPanicSlowSubscriberDropsNotifications(t *testing.T) {
	s := &PanicAlertService{}

	ch := s.Subscribe("slow-observer")

	// 缓冲填满后继续广播不阻塞，多出的通知被丢弃
	for i := 0; i < 20; i++ {
		s.notifySubscribers(PanicNotification{Type: PanicNotifyAlert, Version: int64(i + 1)})
	}

	assert.Equal(t, cap(ch), len(ch))

	// 丢弃的是最新通知，收到的最后一条版本落后于最新版本，
	// 订阅方靠全量拉取追平
	var lastSeen int64
	for len(ch) > 0 {
		lastSeen = (<-ch).Version
	}
	assert.Equal(t, int64(cap(ch)), lastSeen)
}

func TestPanicUnsubscribeClosesChannel(t *testing.T) {
	s := &PanicAlertService{}

	ch := s.Subscribe("observer-1")
	s.Unsubscribe("observer-1")

	_, open := <-ch
	assert.False(t, open)

	// 注销后的广播不投递也不崩溃
	s.notifySubscribers(PanicNotification{Type: PanicNotifyAlert, Version: 1})

	// 重复注销是空操作
	s.Unsubscribe("observer-1")
}

func TestPanicSubscriberIsolation(t *testing.T) {
	s := &PanicAlertService{}

	// 一个订阅者缓冲满不影响其他订阅者收到通知
	slow := s.Subscribe("slow")
	fast := s.Subscribe("fast")

	for i := 0; i < cap(slow); i++ {
		s.notifySubscribers(PanicNotification{Version: int64(i)})
	}
	for len(fast) > 0 {
		<-fast
	}

	s.notifySubscribers(PanicNotification{Type: PanicNotifyClear, Version: 99})

	require.Len(t, fast, 1)
	assert.Equal(t, int64(99), (<-fast).Version)
	assert.Equal(t, cap(slow), len(slow))
}

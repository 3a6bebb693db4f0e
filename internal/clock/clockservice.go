package clock

import (
	"sync"
	"time"
)

type Service interface {
	Now() time.Time
}

// TimeSetterFn moves a mock clock, used by tests to simulate expiry.
type TimeSetterFn func(now time.Time)

type mockService struct {
	mu  sync.RWMutex
	now time.Time
}

func (m *mockService) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func NewMockServiceNow() (Service, TimeSetterFn) {
	return NewMockService(time.Now())
}

func NewMockService(now time.Time) (Service, TimeSetterFn) {
	service := &mockService{
		now: now,
	}

	return service, func(now time.Time) {
		service.mu.Lock()
		defer service.mu.Unlock()
		service.now = now
	}
}

type clockService struct{}

func NewClockService() Service {
	return &clockService{}
}

func (c *clockService) Now() time.Time {
	return time.Now()
}

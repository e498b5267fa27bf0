// Package clock 提供可注入的时间源，限流窗口与 token 过期都通过它取当前时间。
package clock

import (
	"sync"
	"time"
)

// Clock 时间源
type Clock interface {
	Now() time.Time
}

// Real 系统时钟
type Real struct{}

// Now 返回 UTC 当前时间
func (Real) Now() time.Time { return time.Now().UTC() }

// Manual 手动推进的时钟，测试用
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual 创建起点为 start 的手动时钟
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance 向前推进 d
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

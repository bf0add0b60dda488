package health

import (
	"context"
	"time"
)

// SessionCounter 会话数量来源
type SessionCounter interface {
	Len() int
}

// SessionChecker 解码会话容量检查
type SessionChecker struct {
	sessions SessionCounter
	max      int
}

// NewSessionChecker 创建会话检查器；max<=0 表示不限
func NewSessionChecker(sessions SessionCounter, max int) *SessionChecker {
	return &SessionChecker{sessions: sessions, max: max}
}

// Name 返回检查器名称
func (c *SessionChecker) Name() string { return "sessions" }

// Check 会话数超过 80% 或达到上限时降级；已有会话仍可解析
func (c *SessionChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	active := c.sessions.Len()
	if c.max <= 0 {
		return result(start, StatusHealthy, "no session limit", Details{"active_sessions": active})
	}

	utilization := float64(active) / float64(c.max)
	status, message := StatusHealthy, "ok"
	switch {
	case active >= c.max:
		status, message = StatusDegraded, "session limit reached"
	case utilization > 0.8:
		status, message = StatusDegraded, "high session usage"
	}
	return result(start, status, message, Details{
		"active_sessions": active,
		"max_sessions":    c.max,
		"utilization":     percent(utilization),
	})
}

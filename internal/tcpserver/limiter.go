package tcpserver

import "sync/atomic"

// ConnectionLimiter 连接数限流器（基于Semaphore），满额时立即拒绝
type ConnectionLimiter struct {
	sem           chan struct{}
	maxConn       int
	activeCount   atomic.Int64
	rejectedCount atomic.Int64
}

// NewConnectionLimiter 创建连接限流器，maxConn<=0 时取 256
func NewConnectionLimiter(maxConn int) *ConnectionLimiter {
	if maxConn <= 0 {
		maxConn = 256
	}
	return &ConnectionLimiter{sem: make(chan struct{}, maxConn), maxConn: maxConn}
}

// TryAcquire 获取连接许可（非阻塞）
func (l *ConnectionLimiter) TryAcquire() bool {
	select {
	case l.sem <- struct{}{}:
		l.activeCount.Add(1)
		return true
	default:
		l.rejectedCount.Add(1)
		return false
	}
}

// Release 释放连接许可
func (l *ConnectionLimiter) Release() {
	select {
	case <-l.sem:
		l.activeCount.Add(-1)
	default:
	}
}

// Current 当前活跃连接数
func (l *ConnectionLimiter) Current() int { return int(l.activeCount.Load()) }

// MaxConnections 最大连接数
func (l *ConnectionLimiter) MaxConnections() int { return l.maxConn }

// Stats 获取统计信息
func (l *ConnectionLimiter) Stats() LimiterStats {
	return LimiterStats{
		MaxConnections:    l.maxConn,
		ActiveConnections: l.Current(),
		RejectedTotal:     l.rejectedCount.Load(),
	}
}

// LimiterStats 限流器统计信息
type LimiterStats struct {
	MaxConnections    int   `json:"max_connections"`
	ActiveConnections int   `json:"active_connections"`
	RejectedTotal     int64 `json:"rejected_total"`
}

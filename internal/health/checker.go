// Package health 组合依赖检查，提供存活/就绪/详细报告路由
package health

import (
	"context"
	"fmt"
	"time"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"  // 可解析，但会话或快照能力受限
	StatusUnhealthy Status = "unhealthy" // 无法提供解析
)

// Details 附加诊断信息
type Details map[string]any

// CheckResult 健康检查结果
type CheckResult struct {
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Details Details       `json:"details,omitempty"`
	Latency time.Duration `json:"latency"`
}

// Checker 健康检查器接口
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// result 按开始时间填充耗时
func result(start time.Time, status Status, message string, details Details) CheckResult {
	return CheckResult{Status: status, Message: message, Details: details, Latency: time.Since(start)}
}

func percent(ratio float64) string { return fmt.Sprintf("%.1f%%", ratio*100) }

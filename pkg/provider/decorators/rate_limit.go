package decorators

import (
	"context"
	"fmt"
	"sync"
	"time"

	"akone/pkg/core"
)

// RateLimitSource 频率控制装饰器
// 保证对底层数据源的两次请求之间至少间隔 minInterval，
// 等待期间响应 ctx 取消
type RateLimitSource struct {
	base        core.DataSource
	minInterval time.Duration

	mu          sync.Mutex
	nextAllowed time.Time
}

// NewRateLimitSource 创建频率控制装饰器
func NewRateLimitSource(base core.DataSource, minInterval time.Duration) *RateLimitSource {
	return &RateLimitSource{
		base:        base,
		minInterval: minInterval,
	}
}

// Name 返回装饰器名称
func (r *RateLimitSource) Name() string {
	return fmt.Sprintf("RateLimit(%s)", r.base.Name())
}

// Fetch 实现带频率控制的数据获取
func (r *RateLimitSource) Fetch(ctx context.Context, method string, params core.Params) (*core.Table, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.base.Fetch(ctx, method, params)
}

// Close 关闭底层数据源
func (r *RateLimitSource) Close() error {
	if closable, ok := r.base.(core.Closable); ok {
		return closable.Close()
	}
	return nil
}

// wait 预约下一个可用时间槽并等待到点
func (r *RateLimitSource) wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	delay := r.nextAllowed.Sub(now)
	if delay < 0 {
		delay = 0
	}
	r.nextAllowed = now.Add(delay + r.minInterval)
	r.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package decorators

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"akone/pkg/core"
	"akone/pkg/logger"
)

// CircuitBreakerSource 熔断器装饰器
// 使用 sony/gobreaker 包装任意数据源：连续失败达到阈值后快速失败一段时间，
// 避免对已经宕掉的上游反复发起请求。
// 路由层本身不做熔断，需要熔断的源在注册前用此装饰器包装
type CircuitBreakerSource struct {
	base   core.DataSource
	cb     *gobreaker.CircuitBreaker
	config *CircuitBreakerConfig
	log    *logrus.Entry
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	MaxRequests uint32        `yaml:"max_requests"`  // 半开状态下的最大请求数
	Interval    time.Duration `yaml:"interval"`      // 统计窗口时间
	Timeout     time.Duration `yaml:"timeout"`       // 熔断器打开后的超时时间
	ReadyToTrip uint32        `yaml:"ready_to_trip"` // 触发熔断的连续失败次数阈值
	Enabled     bool          `yaml:"enabled"`       // 是否启用熔断器
}

// DefaultCircuitBreakerConfig 默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: 5,
		Enabled:     true,
	}
}

// NewCircuitBreakerSource 创建熔断器装饰器
func NewCircuitBreakerSource(base core.DataSource, config *CircuitBreakerConfig) *CircuitBreakerSource {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}

	log := logger.WithComponent("CircuitBreaker").WithField("source", base.Name())

	settings := gobreaker.Settings{
		Name:        base.Name(),
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ReadyToTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("熔断器状态从 %v 变更为 %v", from, to)
		},
	}

	return &CircuitBreakerSource{
		base:   base,
		cb:     gobreaker.NewCircuitBreaker(settings),
		config: config,
		log:    log,
	}
}

// Name 返回装饰器名称
func (c *CircuitBreakerSource) Name() string {
	return fmt.Sprintf("CircuitBreaker(%s)", c.base.Name())
}

// Fetch 实现带熔断的数据获取
// 熔断器打开时立即返回 gobreaker.ErrOpenState，不触碰底层数据源
func (c *CircuitBreakerSource) Fetch(ctx context.Context, method string, params core.Params) (*core.Table, error) {
	if !c.config.Enabled {
		return c.base.Fetch(ctx, method, params)
	}

	result, err := c.cb.Execute(func() (interface{}, error) {
		return c.base.Fetch(ctx, method, params)
	})
	if err != nil {
		return nil, err
	}

	table, ok := result.(*core.Table)
	if !ok {
		return nil, fmt.Errorf("circuit breaker returned unexpected type %T", result)
	}
	return table, nil
}

// Close 关闭底层数据源
func (c *CircuitBreakerSource) Close() error {
	if closable, ok := c.base.(core.Closable); ok {
		return closable.Close()
	}
	return nil
}

// State 获取熔断器当前状态
func (c *CircuitBreakerSource) State() gobreaker.State {
	return c.cb.State()
}

// Counts 获取熔断器计数信息
func (c *CircuitBreakerSource) Counts() gobreaker.Counts {
	return c.cb.Counts()
}

// IsOpen 检查熔断器是否处于打开状态
func (c *CircuitBreakerSource) IsOpen() bool {
	return c.cb.State() == gobreaker.StateOpen
}

package router

import (
	"time"

	"akone/pkg/core"
	"akone/pkg/logger"
	"akone/pkg/provider/eastmoney"
	"akone/pkg/provider/sina"
	"akone/pkg/provider/tencent"
)

// 默认数据源顺序与结果列约束
var (
	// DefaultHistSources 历史行情的默认数据源优先级
	DefaultHistSources = []string{"eastmoney", "tencent"}

	// DefaultRealtimeSources 实时行情的默认数据源优先级
	DefaultRealtimeSources = []string{"eastmoney", "sina", "tencent"}

	// DefaultHistColumns 历史行情结果必须包含的列
	DefaultHistColumns = []string{"timestamp", "open", "high", "low", "close", "volume"}

	// DefaultRealtimeColumns 实时行情结果必须包含的列
	DefaultRealtimeColumns = []string{"symbol", "price", "timestamp"}
)

// SourceConstructor 数据源构造函数
type SourceConstructor func() (core.DataSource, error)

// builtinSources 内置数据源注册表，名称 → 构造函数
var builtinSources = map[string]SourceConstructor{
	"eastmoney": func() (core.DataSource, error) { return eastmoney.NewProvider(), nil },
	"sina":      func() (core.DataSource, error) { return sina.NewProvider(), nil },
	"tencent":   func() (core.DataSource, error) { return tencent.NewProvider(), nil },
}

// RegisterSource 注册自定义数据源构造函数，同名覆盖
// 允许在运行时扩展内置数据源表
func RegisterSource(name string, ctor SourceConstructor) {
	builtinSources[name] = ctor
}

// NewHistoricalRouter 创建历史行情路由器
// sources 为空时使用默认数据源顺序；构造失败的源记日志后跳过，不阻断其余源
func NewHistoricalRouter(sources []string, attemptTimeout time.Duration) *MultiSourceRouter {
	if len(sources) == 0 {
		sources = DefaultHistSources
	}
	return New(buildRegistrations(sources), &Config{
		RequiredColumns: DefaultHistColumns,
		MinRows:         1,
		AttemptTimeout:  attemptTimeout,
		EnableLogging:   true,
	})
}

// NewRealtimeRouter 创建实时行情路由器
func NewRealtimeRouter(sources []string, attemptTimeout time.Duration) *MultiSourceRouter {
	if len(sources) == 0 {
		sources = DefaultRealtimeSources
	}
	return New(buildRegistrations(sources), &Config{
		RequiredColumns: DefaultRealtimeColumns,
		MinRows:         1,
		AttemptTimeout:  attemptTimeout,
		EnableLogging:   true,
	})
}

// buildRegistrations 按名称列表构造注册项，保持给定顺序
func buildRegistrations(sources []string) []Registration {
	log := logger.WithComponent("RouterFactory")

	regs := make([]Registration, 0, len(sources))
	for _, name := range sources {
		ctor, ok := builtinSources[name]
		if !ok {
			log.Warnf("未知数据源 '%s'，已跳过", name)
			continue
		}
		provider, err := ctor()
		if err != nil {
			log.Warnf("初始化数据源 '%s' 失败: %v", name, err)
			continue
		}
		regs = append(regs, Registration{Source: name, Provider: provider})
	}
	return regs
}

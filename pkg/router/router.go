package router

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"akone/pkg/core"
	"akone/pkg/logger"
)

// maxErrorLen 记录到失败明细中的单条错误消息长度上限
const maxErrorLen = 100

// Registration 数据源注册项
// 注册顺序即优先级，排在前面的数据源先被尝试；名称不要求唯一
type Registration struct {
	Source   string
	Provider core.DataSource
}

// Config 路由器配置，构造后不可变
type Config struct {
	// RequiredColumns 结果表格必须包含的列，为空则不检查
	RequiredColumns []string `mapstructure:"required_columns" yaml:"required_columns"`

	// MinRows 结果表格的最少行数，零行表格无论如何都视为无效
	MinRows int `mapstructure:"min_rows" yaml:"min_rows"`

	// AttemptTimeout 单次数据源调用的超时时间，0 表示不限制
	// 设置后每次调用都在独立的超时上下文中执行，单个无响应的源不会拖死整个路由
	AttemptTimeout time.Duration `mapstructure:"attempt_timeout" yaml:"attempt_timeout"`

	// EnableLogging 是否记录故障转移日志
	EnableLogging bool `mapstructure:"enable_logging" yaml:"enable_logging"`
}

// MultiSourceRouter 多数据源路由器
// 按注册顺序依次尝试各数据源，直到某个源返回通过校验的结果为止；
// 全部失败时返回带逐源失败明细的聚合错误。
// 每次调用都从第一个源重新开始，源的历史成败只进入统计，不影响路由顺序
type MultiSourceRouter struct {
	providers []Registration
	cfg       Config

	mu    sync.Mutex
	stats map[string]*SourceStats

	log *logrus.Entry
}

// New 创建多数据源路由器
// providers 为 (名称, 数据源) 注册列表，按优先级排列；cfg 为 nil 时使用零值配置
func New(providers []Registration, cfg *Config) *MultiSourceRouter {
	c := Config{EnableLogging: true}
	if cfg != nil {
		c = *cfg
	}

	regs := make([]Registration, len(providers))
	copy(regs, providers)

	return &MultiSourceRouter{
		providers: regs,
		cfg:       c,
		stats:     make(map[string]*SourceStats),
		log:       logger.WithComponent("MultiSourceRouter"),
	}
}

// Sources 返回注册的数据源名称，按优先级排列
func (r *MultiSourceRouter) Sources() []string {
	names := make([]string, len(r.providers))
	for i, reg := range r.providers {
		names[i] = reg.Source
	}
	return names
}

// Execute 执行数据集调用，返回第一个通过校验的结果
// 所有数据源均失败时返回 *AllSourcesFailedError，
// 错误文本中包含每个源的失败原因
func (r *MultiSourceRouter) Execute(ctx context.Context, method string, params core.Params) (*core.Table, error) {
	res := r.run(ctx, method, "", params)
	if res.Success {
		return res.Data, nil
	}
	return nil, &AllSourcesFailedError{Method: method, Details: res.ErrorDetails}
}

// ExecuteWithResult 执行数据集调用并返回完整的诊断结果
// 与 Execute 不同，此方法永不返回错误，调用方通过 ExecutionResult.Success 判断结果
func (r *MultiSourceRouter) ExecuteWithResult(ctx context.Context, method string, params core.Params) *ExecutionResult {
	return r.run(ctx, method, "", params)
}

// ExecuteWithFallback 执行数据集调用，并允许为方法名指定备选名称
// 个别数据源对同类数据集使用不同的方法名时，
// 对报告不支持 primary 的源改用 fallback 再试一次（仍计一次尝试）
func (r *MultiSourceRouter) ExecuteWithFallback(ctx context.Context, primary, fallback string, params core.Params) (*core.Table, error) {
	res := r.run(ctx, primary, fallback, params)
	if res.Success {
		return res.Data, nil
	}
	return nil, &AllSourcesFailedError{Method: primary, Details: res.ErrorDetails}
}

// GetStats 返回各数据源的累计成败统计快照
// 只读操作，不会重置计数；多个路由器实例的计数相互独立
func (r *MultiSourceRouter) GetStats() map[string]SourceStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]SourceStats, len(r.stats))
	for name, s := range r.stats {
		snapshot[name] = *s
	}
	return snapshot
}

// run 路由核心循环：按注册顺序逐源尝试，首个通过校验的结果即胜出
func (r *MultiSourceRouter) run(ctx context.Context, method, fallback string, params core.Params) *ExecutionResult {
	details := []ErrorDetail{}
	attempts := 0

	for _, reg := range r.providers {
		attempts++

		table, err := r.invoke(ctx, reg, method, params)
		if err != nil && fallback != "" && errors.Is(err, core.ErrMethodNotSupported) {
			if r.cfg.EnableLogging {
				r.log.Infof("数据源 '%s' 不支持 '%s'，改用备选方法 '%s'", reg.Source, method, fallback)
			}
			table, err = r.invoke(ctx, reg, fallback, params)
		}

		if err != nil {
			msg := truncateMessage(err.Error())
			details = append(details, ErrorDetail{Source: reg.Source, Message: msg})
			r.recordAttempt(reg.Source, false)
			if r.cfg.EnableLogging {
				r.log.Warnf("数据源 '%s' 调用 '%s' 失败: %s", reg.Source, method, msg)
			}
			continue
		}

		if verr := r.validateResult(table); verr != nil {
			// 未抛错但结果不可用，与调用失败同等对待，
			// 仅错误文本不同以便区分数据质量问题和连通性问题
			details = append(details, ErrorDetail{Source: reg.Source, Message: verr.Error()})
			r.recordAttempt(reg.Source, false)
			if r.cfg.EnableLogging {
				r.log.Warnf("数据源 '%s' 对 '%s' 返回无效结果: %s", reg.Source, method, verr)
			}
			continue
		}

		r.recordAttempt(reg.Source, true)
		if r.cfg.EnableLogging && len(details) > 0 {
			r.log.Infof("经过 %d 次失败尝试后从 '%s' 成功获取数据", len(details), reg.Source)
		}
		return &ExecutionResult{
			Success:      true,
			Data:         table,
			Source:       reg.Source,
			Attempts:     attempts,
			ErrorDetails: details,
		}
	}

	return &ExecutionResult{
		Success:      false,
		Error:        formatErrorSummary(details),
		Attempts:     attempts,
		ErrorDetails: details,
	}
}

// invoke 在故障边界内调用单个数据源
// 数据源抛出的 panic 也在此处兜住并转为普通错误，调用方永远看不到原始异常
func (r *MultiSourceRouter) invoke(ctx context.Context, reg Registration, method string, params core.Params) (table *core.Table, err error) {
	if r.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.AttemptTimeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			table = nil
			err = fmt.Errorf("provider panic: %v", rec)
		}
	}()

	return reg.Provider.Fetch(ctx, method, params)
}

// validateResult 校验结果是否可接受，可接受返回 nil，否则返回带原因的错误
// 纯函数，只依赖输入和路由器的静态配置。
// 列存在但内容全空的表格在此层仍视为有效，空值检查是调用方的职责
func (r *MultiSourceRouter) validateResult(table *core.Table) error {
	if table.Empty() {
		return errors.New("empty result")
	}

	if r.cfg.MinRows > 0 && table.Len() < r.cfg.MinRows {
		return fmt.Errorf("insufficient rows: got %d, need %d", table.Len(), r.cfg.MinRows)
	}

	if len(r.cfg.RequiredColumns) > 0 {
		var missing []string
		for _, col := range r.cfg.RequiredColumns {
			if !table.HasColumn(col) {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
		}
	}

	return nil
}

// recordAttempt 更新单个数据源的成败计数，每次尝试恰好计一次
func (r *MultiSourceRouter) recordAttempt(source string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[source]
	if !ok {
		s = &SourceStats{}
		r.stats[source] = s
	}

	if success {
		s.Success++
	} else {
		s.Failure++
	}
}

// truncateMessage 截断过长的错误消息，保持失败明细可读
func truncateMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= maxErrorLen {
		return msg
	}
	return string(runes[:maxErrorLen])
}

package router

import "akone/pkg/core"

// ErrorDetail 单次尝试的失败记录
type ErrorDetail struct {
	Source  string `json:"source"`  // 数据源名称
	Message string `json:"message"` // 失败原因
}

// ExecutionResult 一次路由调用的完整结果
// Success 为 true 时 Data 与 Source 有值、Error 为空；
// 为 false 时 Data 与 Source 为空、Error 为聚合错误信息，
// 且 ErrorDetails 的长度等于 Attempts
type ExecutionResult struct {
	Success      bool          `json:"success"`
	Data         *core.Table   `json:"-"`
	Source       string        `json:"source,omitempty"`
	Error        string        `json:"error,omitempty"`
	Attempts     int           `json:"attempts"`
	ErrorDetails []ErrorDetail `json:"error_details"`
}

// SourceStats 单个数据源的累计统计
type SourceStats struct {
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

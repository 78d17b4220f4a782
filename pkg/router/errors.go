package router

import (
	"fmt"
	"strings"
)

// AllSourcesFailedError 所有数据源均失败的聚合错误
// 错误消息中逐条列出每个数据源的失败原因，调用方仅凭错误文本即可定位故障源
type AllSourcesFailedError struct {
	Method  string
	Details []ErrorDetail
}

// Error 实现 error 接口
func (e *AllSourcesFailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "all data sources failed for '%s':", e.Method)
	for _, d := range e.Details {
		fmt.Fprintf(&b, "\n  %s: %s", d.Source, d.Message)
	}
	return b.String()
}

// formatErrorSummary 把失败明细拼接成聚合错误文本
func formatErrorSummary(details []ErrorDetail) string {
	lines := make([]string, 0, len(details))
	for _, d := range details {
		lines = append(lines, fmt.Sprintf("  %s: %s", d.Source, d.Message))
	}
	return strings.Join(lines, "\n")
}

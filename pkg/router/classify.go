package router

import "strings"

// ErrorClass 失败原因的归类
// 仅用于观测：连通性问题说明源暂时不可达，数据质量问题说明上游接口可能变更。
// 归类结果不参与任何路由决策
type ErrorClass string

const (
	// ClassConnectivity 连通性问题（网络超时、连接失败等）
	ClassConnectivity ErrorClass = "connectivity"
	// ClassDataQuality 数据质量问题（空结果、缺列、行数不足）
	ClassDataQuality ErrorClass = "data_quality"
	// ClassUnknown 无法归类的失败
	ClassUnknown ErrorClass = "unknown"
)

// ClassifyMessage 根据失败消息文本归类失败原因
func ClassifyMessage(message string) ErrorClass {
	msg := strings.ToLower(message)

	// 校验器产生的合成失败消息
	switch {
	case strings.Contains(msg, "empty result"),
		strings.Contains(msg, "missing required columns"),
		strings.Contains(msg, "insufficient rows"),
		strings.Contains(msg, "unexpected upstream response format"):
		return ClassDataQuality
	}

	// 网络类失败
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "dial tcp"),
		strings.Contains(msg, "network is unreachable"),
		strings.Contains(msg, "temporary failure"),
		strings.Contains(msg, "eof"):
		return ClassConnectivity
	}

	return ClassUnknown
}

// ClassifyDetails 统计一组失败明细中各归类的数量
func ClassifyDetails(details []ErrorDetail) map[ErrorClass]int {
	counts := make(map[ErrorClass]int)
	for _, d := range details {
		counts[ClassifyMessage(d.Message)]++
	}
	return counts
}

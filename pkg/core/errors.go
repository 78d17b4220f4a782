package core

import "errors"

// 定义核心错误
var (
	// ErrMethodNotSupported 数据源不支持请求的数据集方法
	ErrMethodNotSupported = errors.New("method not supported")

	// ErrInvalidSymbol 无效的证券代码错误
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrEmptySymbol 证券代码为空错误
	ErrEmptySymbol = errors.New("symbol is empty")

	// ErrUpstreamFormat 上游返回数据格式错误
	ErrUpstreamFormat = errors.New("unexpected upstream response format")
)

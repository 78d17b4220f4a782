package core

import "context"

// 数据集方法名，与上游检索接口保持一致
const (
	// MethodHistData 历史行情数据
	MethodHistData = "get_hist_data"
	// MethodRealtimeData 实时行情数据
	MethodRealtimeData = "get_realtime_data"
)

// DataSource 数据源接口
// 所有数据源都必须实现此接口。方法名通过 method 参数静态分发，
// 数据源对不支持的方法返回 ErrMethodNotSupported（包装后），
// 由路由层作为一次普通的尝试失败处理
type DataSource interface {
	// Name 返回数据源名称，用于标识和日志记录
	Name() string

	// Fetch 获取指定数据集
	// method 为数据集方法名（如 MethodHistData），params 为透传参数。
	// 成功返回表格数据，失败返回错误；实现必须响应 ctx 取消
	Fetch(ctx context.Context, method string, params Params) (*Table, error)
}

// Closable 可关闭接口
// 持有连接等资源的数据源应实现此接口
type Closable interface {
	// Close 关闭数据源，清理资源
	Close() error
}

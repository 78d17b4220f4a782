package core

import (
	"time"

	"github.com/spf13/cast"
)

// Params 数据集调用参数
// 路由器把同一组参数透传给每个数据源，键名与上游检索接口保持一致
// （如 symbol、start_date、end_date、adjust）
type Params map[string]any

// Has 判断参数是否存在
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String 读取字符串参数，缺失返回空字符串
func (p Params) String(key string) string {
	return cast.ToString(p[key])
}

// StringOr 读取字符串参数，缺失或为空时返回默认值
func (p Params) StringOr(key, def string) string {
	if s := cast.ToString(p[key]); s != "" {
		return s
	}
	return def
}

// Int 读取整数参数，缺失返回 0
func (p Params) Int(key string) int {
	return cast.ToInt(p[key])
}

// IntOr 读取整数参数，缺失或为 0 时返回默认值
func (p Params) IntOr(key string, def int) int {
	if v, ok := p[key]; ok {
		if n := cast.ToInt(v); n != 0 {
			return n
		}
	}
	return def
}

// Bool 读取布尔参数
func (p Params) Bool(key string) bool {
	return cast.ToBool(p[key])
}

// Duration 读取时长参数
func (p Params) Duration(key string) time.Duration {
	return cast.ToDuration(p[key])
}

// Clone 返回参数的浅拷贝
func (p Params) Clone() Params {
	clone := make(Params, len(p))
	for k, v := range p {
		clone[k] = v
	}
	return clone
}

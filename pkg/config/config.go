package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config 主配置结构
type Config struct {
	// 路由器配置
	Router RouterConfig `json:"router" mapstructure:"router"`

	// 数据源配置
	Provider ProviderConfig `json:"provider" mapstructure:"provider"`

	// 日志配置
	Logger LoggerConfig `json:"logger" mapstructure:"logger"`
}

// RouterConfig 多数据源路由器配置
type RouterConfig struct {
	HistSources     []string      `json:"hist_sources" mapstructure:"hist_sources"`         // 历史行情数据源优先级
	RealtimeSources []string      `json:"realtime_sources" mapstructure:"realtime_sources"` // 实时行情数据源优先级
	MinRows         int           `json:"min_rows" mapstructure:"min_rows"`                 // 结果最少行数
	AttemptTimeout  time.Duration `json:"attempt_timeout" mapstructure:"attempt_timeout"`   // 单次数据源调用超时
	EnableLogging   bool          `json:"enable_logging" mapstructure:"enable_logging"`     // 是否记录故障转移日志
}

// ProviderConfig 数据源通用配置
type ProviderConfig struct {
	Timeout        time.Duration `json:"timeout" mapstructure:"timeout"`                 // 请求超时时间
	RateLimit      time.Duration `json:"rate_limit" mapstructure:"rate_limit"`           // 请求间隔限制
	UserAgent      string        `json:"user_agent" mapstructure:"user_agent"`           // 用户代理
	CircuitBreaker bool          `json:"circuit_breaker" mapstructure:"circuit_breaker"` // 是否为数据源套熔断器
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // 日志级别 (debug, info, warn, error)
	Format string `json:"format" mapstructure:"format"` // 输出格式 (text, json)
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Router: RouterConfig{
			HistSources:     []string{"eastmoney", "tencent"},
			RealtimeSources: []string{"eastmoney", "sina", "tencent"},
			MinRows:         1,
			AttemptTimeout:  20 * time.Second,
			EnableLogging:   true,
		},
		Provider: ProviderConfig{
			Timeout:        15 * time.Second,
			RateLimit:      200 * time.Millisecond,
			UserAgent:      "akone/1.0",
			CircuitBreaker: false,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load 从配置文件加载配置，文件中未出现的项保持默认值
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.Router.HistSources) == 0 {
		return errors.New("router hist_sources cannot be empty")
	}

	if len(c.Router.RealtimeSources) == 0 {
		return errors.New("router realtime_sources cannot be empty")
	}

	if c.Router.MinRows < 0 {
		return errors.New("router min_rows cannot be negative")
	}

	if c.Router.AttemptTimeout < 0 {
		return errors.New("router attempt_timeout cannot be negative")
	}

	if c.Provider.Timeout <= 0 {
		return errors.New("provider timeout must be positive")
	}

	if c.Provider.RateLimit < 0 {
		return errors.New("provider rate_limit cannot be negative")
	}

	return nil
}

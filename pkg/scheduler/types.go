package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"akone/pkg/router"
)

// JobConfig 定义单个刷新任务的配置
type JobConfig struct {
	Name     string                 `yaml:"name" json:"name" mapstructure:"name"`
	Enabled  bool                   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Schedule string                 `yaml:"schedule" json:"schedule" mapstructure:"schedule"`
	Method   string                 `yaml:"method" json:"method" mapstructure:"method"`
	Params   map[string]interface{} `yaml:"params" json:"params" mapstructure:"params"`
}

// JobsConfig 定义整个任务配置文件结构
type JobsConfig struct {
	Jobs []JobConfig `yaml:"jobs" json:"jobs" mapstructure:"jobs"`
}

// Job 表示一个运行中的刷新任务
type Job struct {
	ID         string
	Config     JobConfig
	EntryID    cron.EntryID
	LastRun    *time.Time
	RunCount   int64
	ErrorCount int64

	// LastResult 最近一次执行的完整结果（含逐源失败明细）
	LastResult *router.ExecutionResult
}

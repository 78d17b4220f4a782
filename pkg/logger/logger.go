package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Entry = logrus.Entry

var (
	mu sync.Mutex

	// log 全局日志实例，首次使用时按环境变量初始化
	log *logrus.Logger
)

// Config 日志配置
type Config struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
	Output io.Writer
}

// Init 初始化日志器
func Init(cfg Config) {
	l := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FullTimestamp:   true,
		})
	}

	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	mu.Lock()
	log = l
	mu.Unlock()
}

// InitFromEnv 从环境变量初始化日志器（LOG_LEVEL / LOG_FORMAT）
func InitFromEnv() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	Init(Config{Level: level, Format: os.Getenv("LOG_FORMAT")})
}

// Get 获取日志器实例
func Get() *logrus.Logger {
	mu.Lock()
	initialized := log != nil
	mu.Unlock()

	if !initialized {
		InitFromEnv()
	}

	mu.Lock()
	defer mu.Unlock()
	return log
}

// WithComponent 创建带组件名的日志器
func WithComponent(component string) *logrus.Entry {
	return Get().WithField("component", component)
}

// WithSource 创建带数据源名的日志器
func WithSource(source string) *logrus.Entry {
	return Get().WithField("source", source)
}

// SetLevel 设置日志级别
func SetLevel(level string) {
	l, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		l = logrus.InfoLevel
	}
	Get().SetLevel(l)
}

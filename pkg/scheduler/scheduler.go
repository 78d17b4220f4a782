package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"akone/pkg/core"
	"akone/pkg/logger"
	"akone/pkg/router"
)

// RefreshScheduler 数据集定时刷新调度器
// 按 cron 表达式周期性地通过路由器拉取数据集，记录每次执行的路由结果。
// 使用路由器的不抛错调用面，单次刷新失败只计数、不中断调度
type RefreshScheduler struct {
	cron   *cron.Cron
	router *router.MultiSourceRouter
	jobs   map[string]*Job
	mu     sync.RWMutex
	log    *logrus.Entry
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRefreshScheduler 创建刷新调度器
func NewRefreshScheduler(r *router.MultiSourceRouter) *RefreshScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &RefreshScheduler{
		cron:   cron.New(cron.WithSeconds()),
		router: r,
		jobs:   make(map[string]*Job),
		log:    logger.WithComponent("RefreshScheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// LoadConfig 从配置文件加载任务配置
func (s *RefreshScheduler) LoadConfig(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var config JobsConfig
	if err := v.Unmarshal(&config); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	loaded := 0
	for _, jobConfig := range config.Jobs {
		if !jobConfig.Enabled {
			s.log.Infof("任务 '%s' 已禁用，跳过", jobConfig.Name)
			continue
		}
		if _, err := s.AddJob(jobConfig); err != nil {
			s.log.WithError(err).Warnf("添加任务失败: %s", jobConfig.Name)
			continue
		}
		loaded++
	}

	s.log.Infof("成功加载 %d 个刷新任务", loaded)
	return nil
}

// AddJob 添加刷新任务，返回任务 ID
func (s *RefreshScheduler) AddJob(config JobConfig) (string, error) {
	if config.Name == "" {
		return "", fmt.Errorf("job name cannot be empty")
	}
	if config.Schedule == "" {
		return "", fmt.Errorf("job schedule cannot be empty")
	}
	if config.Method == "" {
		return "", fmt.Errorf("job method cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := &Job{
		ID:     uuid.New().String(),
		Config: config,
	}

	entryID, err := s.cron.AddFunc(config.Schedule, func() {
		s.runJob(job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("invalid schedule '%s': %w", config.Schedule, err)
	}

	job.EntryID = entryID
	s.jobs[job.ID] = job
	s.log.Infof("已添加刷新任务 '%s' (%s)", config.Name, config.Schedule)
	return job.ID, nil
}

// RemoveJob 移除刷新任务
func (s *RefreshScheduler) RemoveJob(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job '%s' not found", id)
	}

	s.cron.Remove(job.EntryID)
	delete(s.jobs, id)
	return nil
}

// RunNow 立即执行一次指定任务（不影响其 cron 调度）
func (s *RefreshScheduler) RunNow(id string) error {
	s.mu.RLock()
	_, ok := s.jobs[id]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job '%s' not found", id)
	}

	s.runJob(id)
	return nil
}

// Jobs 返回所有任务的快照
func (s *RefreshScheduler) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Start 启动调度器
func (s *RefreshScheduler) Start() {
	s.cron.Start()
	s.log.Info("刷新调度器已启动")
}

// Stop 停止调度器，等待执行中的任务结束
func (s *RefreshScheduler) Stop() {
	s.cancel()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.log.Info("刷新调度器已停止")
}

// runJob 执行一次刷新并记录路由结果
func (s *RefreshScheduler) runJob(id string) {
	s.mu.RLock()
	job, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	res := s.router.ExecuteWithResult(s.ctx, job.Config.Method, core.Params(job.Config.Params))

	now := time.Now()
	s.mu.Lock()
	job.LastRun = &now
	job.RunCount++
	job.LastResult = res
	if !res.Success {
		job.ErrorCount++
	}
	s.mu.Unlock()

	if res.Success {
		s.log.Infof("任务 '%s' 刷新成功，来源 '%s'，共 %d 行",
			job.Config.Name, res.Source, res.Data.Len())
	} else {
		s.log.Warnf("任务 '%s' 刷新失败（尝试 %d 个数据源）:\n%s",
			job.Config.Name, res.Attempts, res.Error)
	}
}

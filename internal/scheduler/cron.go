package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"talent-radar/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultSpec = "@every 10m"

// Config 用于调度配置。
type Config struct {
	Timeout        string `yaml:"timeout" json:"timeout"`
	ExpiryInterval string `yaml:"expiry_interval" json:"expiry_interval"`
}

// TaskFunc 单次任务。
type TaskFunc func(ctx context.Context) error

type task struct {
	name    string
	spec    string
	run     TaskFunc
	running atomic.Bool
}

// Scheduler 基于 robfig/cron 周期性执行命名任务，同一任务不会重叠执行。
type Scheduler struct {
	cron    *cron.Cron
	tasks   []*task
	byName  map[string]*task
	timeout time.Duration
	log     *zap.Logger
	base    context.Context
}

// New 创建 Scheduler，timeout 为单次任务的超时时间，默认 2 分钟。
func New(cfg Config, l *zap.Logger) *Scheduler {
	timeout := 2 * time.Minute
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	log := logger.Named(l, "scheduler")
	cl := cronLogger{s: log.Sugar()}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		byName:  make(map[string]*task),
		timeout: timeout,
		log:     log,
		base:    context.Background(),
	}
}

// Add 注册任务。interval 接受 Go duration（如 "10m"）或 5 段 cron 表达式，
// 无法解析时回退到每 10 分钟一次。
func (s *Scheduler) Add(name, interval string, fn TaskFunc) error {
	if _, dup := s.byName[name]; dup {
		return fmt.Errorf("task %s already registered", name)
	}
	spec, ok := parseSchedule(interval)
	if !ok {
		s.log.Warn("invalid schedule, using default", zap.String("task", name), zap.String("interval", interval), zap.String("spec", spec))
	}
	t := &task{name: name, spec: spec, run: fn}
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.run(s.base, t) }); err != nil {
		return fmt.Errorf("schedule task %s: %w", name, err)
	}
	s.tasks = append(s.tasks, t)
	s.byName[name] = t
	return nil
}

// Start 启动调度，阻塞直到上下文取消，返回前等待正在执行的任务结束。
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.tasks) == 0 {
		return fmt.Errorf("scheduler has no tasks")
	}
	s.base = ctx
	s.cron.Start()
	for _, t := range s.tasks {
		s.log.Info("task scheduled", zap.String("task", t.name), zap.String("spec", t.spec))
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// RunOnce 立即执行指定任务，任务正在运行时返回 false。
func (s *Scheduler) RunOnce(ctx context.Context, name string) (bool, error) {
	t, ok := s.byName[name]
	if !ok {
		return false, fmt.Errorf("unknown task %s", name)
	}
	return s.run(ctx, t)
}

func (s *Scheduler) run(ctx context.Context, t *task) (bool, error) {
	if t.running.Swap(true) {
		s.log.Debug("task still running, skipped", zap.String("task", t.name))
		return false, nil
	}
	defer t.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := t.run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("task failed", zap.String("task", t.name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return true, err
	}
	s.log.Debug("task done", zap.String("task", t.name), zap.Duration("took", time.Since(start)))
	return true, err
}

// parseSchedule 将配置值转换为 cron spec，第二个返回值表示是否解析成功。
func parseSchedule(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultSpec, true
	}
	if d, err := time.ParseDuration(trimmed); err == nil {
		if d <= 0 {
			return defaultSpec, false
		}
		return "@every " + d.String(), true
	}
	if _, err := cron.ParseStandard(trimmed); err == nil {
		return trimmed, true
	}
	return defaultSpec, false
}

// cronLogger 将 cron 内部日志转到 zap。
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"talent-radar/internal/api"
	"talent-radar/internal/logger"
	"talent-radar/internal/matching"
	"talent-radar/internal/notifier"
	"talent-radar/internal/posting"
	"talent-radar/internal/preference"
	"talent-radar/internal/profile"
	"talent-radar/internal/scheduler"
	"talent-radar/internal/scoring"
	"talent-radar/internal/screening"
	"talent-radar/internal/storage"

	"go.uber.org/zap"
)

const (
	taskNotificationRetry = "notification-retry"
	taskPostingExpiry     = "posting-expiry"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

type taskScheduler interface {
	Start(ctx context.Context) error
	RunOnce(ctx context.Context, name string) (bool, error)
}

// appDeps 进程内组装好的依赖。
type appDeps struct {
	handler http.Handler
	sched   taskScheduler
	log     *zap.Logger
}

type builder func(AppConfig) (appDeps, func(), error)

// buildApp 按配置组装存储、打分、通知与调度，返回的 cleanup 负责关闭数据库。
func buildApp(cfg AppConfig) (appDeps, func(), error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return appDeps{}, func() {}, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.Open(cfg.Database)
	if err != nil {
		return appDeps{}, func() {}, fmt.Errorf("init store: %w", err)
	}
	cleanup := func() {
		_ = store.Close()
		_ = log.Sync()
	}

	engine, err := scoring.NewEngine(cfg.Screening)
	if err != nil {
		cleanup()
		return appDeps{}, func() {}, fmt.Errorf("init scoring: %w", err)
	}
	prefs, err := preference.NewService(store, cfg.Preferences)
	if err != nil {
		cleanup()
		return appDeps{}, func() {}, err
	}

	dispatcher := notifier.NewDispatcher(store, buildSender(cfg.Email, log), cfg.Email.From, cfg.Notifier, log)
	matcher := matching.NewMatcher(store, log)
	postings := posting.NewService(store, matcher, dispatcher, engine.Ladder(), log)
	screen := screening.NewService(store, profile.NewReader(store, nil), engine, dispatcher, log)

	sched := scheduler.New(cfg.Scheduler, log)
	if err := sched.Add(taskNotificationRetry, cfg.Notifier.RetryInterval, func(ctx context.Context) error {
		_, err := dispatcher.RetryPending(ctx)
		return err
	}); err != nil {
		cleanup()
		return appDeps{}, func() {}, err
	}
	if err := sched.Add(taskPostingExpiry, cfg.Scheduler.ExpiryInterval, func(ctx context.Context) error {
		n, err := store.DeactivateExpiredPostings(ctx, time.Now())
		if n > 0 {
			log.Info("expired postings deactivated", zap.Int64("count", n))
		}
		return err
	}); err != nil {
		cleanup()
		return appDeps{}, func() {}, err
	}

	handler := api.NewHandler(api.Deps{
		Postings:      postings,
		Screening:     screen,
		Preferences:   prefs,
		Notifications: store,
		Scheduler:     sched,
		Logger:        log,
	})
	return appDeps{handler: handler, sched: sched, log: log}, cleanup, nil
}

func buildSender(cfg notifier.EmailConfig, log *zap.Logger) notifier.EmailSender {
	if !cfg.Enabled() {
		log.Warn("smtp not configured, emails will be logged only")
		return notifier.NewLogSender(log)
	}
	return notifier.NewSMTPClient(cfg)
}

// serve 启动 HTTP 服务与调度器，直到上下文取消。
func serve(ctx context.Context, cfg AppConfig, build builder) error {
	deps, cleanup, err := build(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}
	timeout := 5 * time.Second
	if d, err := time.ParseDuration(cfg.Server.ShutdownTimeout); err == nil && d > 0 {
		timeout = d
	}

	srv := &http.Server{Addr: addr, Handler: deps.handler, ReadHeaderTimeout: 10 * time.Second}
	logger.OrNop(deps.log).Info("listening", zap.String("addr", addr))
	return runServer(ctx, srv, deps.sched, timeout)
}

// runServer 在上下文取消后优雅关闭服务器，并等待调度器退出。
func runServer(ctx context.Context, srv httpServer, sched taskScheduler, timeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedDone := make(chan error, 1)
	go func() {
		schedDone <- sched.Start(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("shutdown: %w", err)
	}

	if err := <-schedDone; err != nil && !errors.Is(err, context.Canceled) && runErr == nil {
		runErr = fmt.Errorf("scheduler stopped: %w", err)
	}
	return runErr
}

// runOnceManual 组装依赖后立即执行一次指定任务，供命令行手动触发。
func runOnceManual(ctx context.Context, cfg AppConfig, task string, build builder) (bool, error) {
	deps, cleanup, err := build(cfg)
	if err != nil {
		return false, err
	}
	defer cleanup()
	return deps.sched.RunOnce(ctx, task)
}

package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportFunc 一次上报任务
type ReportFunc func(ctx context.Context) error

// ReportScheduler 按 cron 表达式周期执行上报
type ReportScheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	report ReportFunc
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewReportScheduler 创建上报调度器
func NewReportScheduler(report ReportFunc, logger *zap.Logger) *ReportScheduler {
	return &ReportScheduler{
		cron: cron.New(
			cron.WithSeconds(), // 支持秒级调度
			// 上一次上报未结束时跳过本次，避免同一探针并发上报
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
		report: report,
		logger: logger,
	}
}

// Start 注册任务并启动调度，schedule 为 cron 表达式或 @every 30s 形式
func (s *ReportScheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		s.cancel()
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	s.logger.Info("上报调度器已启动", zap.String("schedule", schedule))
	s.cron.Start()
	return nil
}

// Stop 停止调度并等待正在执行的任务结束
func (s *ReportScheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("上报调度器已停止")
}

func (s *ReportScheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	if err := s.report(ctx); err != nil {
		// 单次失败不影响后续调度
		s.logger.Error("上报失败", zap.Error(err))
	}
}

// cronLogger 将 cron 内部日志转到 zap
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// Package scheduler 周期性执行 HR 与通知的维护任务：合同到期、已读通知清理、去重缓存淘汰。
package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config 用于调度配置。Interval 可以是时长（如 "1h"）或 5 段 cron 表达式。
type Config struct {
	Interval              string `yaml:"interval" json:"interval"`
	Timeout               string `yaml:"timeout" json:"timeout"`
	NotificationRetention string `yaml:"notification_retention" json:"notification_retention"`
}

// Store 抽象存储接口，便于测试替换。
type Store interface {
	ExpireContracts(ctx context.Context, now time.Time) (int64, error)
	DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (int64, error)
}

// Evictor 淘汰过期的去重记录。
type Evictor interface {
	Evict() int
}

// Report 单次维护的结果。
type Report struct {
	ExpiredContracts     int64 `json:"expiredContracts"`
	DeletedNotifications int64 `json:"deletedNotifications"`
	EvictedDedup         int   `json:"evictedDedup"`
}

// Scheduler 负责周期性执行维护任务。
type Scheduler struct {
	store     Store
	dedup     Evictor
	logger    zerolog.Logger
	interval  time.Duration
	cronSpec  string
	cron      *cronSchedule
	timeout   time.Duration
	retention time.Duration
	running   atomic.Bool
	newTicker func(time.Duration) ticker
	now       func() time.Time
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewScheduler 创建 Scheduler，解析配置的间隔、超时与通知保留期（默认 30 天）。
func NewScheduler(s Store, dedup Evictor, logger zerolog.Logger, cfg Config) *Scheduler {
	interval, cronCfg := parseSchedule(cfg.Interval)
	return &Scheduler{
		store:     s,
		dedup:     dedup,
		logger:    logger,
		interval:  interval,
		cronSpec:  cronCfg.spec,
		cron:      cronCfg.schedule,
		timeout:   positiveDuration(cfg.Timeout, 30*time.Second),
		retention: positiveDuration(cfg.NotificationRetention, 30*24*time.Hour),
		newTicker: defaultTicker,
		now:       time.Now,
	}
}

func positiveDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	return fallback
}

// Start 启动调度循环，直到上下文取消。单次任务失败只记录日志，不终止循环。
func (s *Scheduler) Start(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("scheduler missing dependencies")
	}

	g, ctx := errgroup.WithContext(ctx)

	if s.cron != nil {
		s.logger.Info().Str("cron", s.cronSpec).Msg("maintenance scheduled")
		g.Go(func() error {
			return s.startCron(ctx)
		})
	} else {
		s.logger.Info().Dur("interval", s.interval).Msg("maintenance scheduled")
		tick := s.newTicker(s.interval)
		ch := tick.C()

		g.Go(func() error {
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ch:
					s.tick(ctx)
				drain:
					for {
						select {
						case <-ch:
							continue
						default:
							break drain
						}
					}
				}
			}
		})
	}

	return g.Wait()
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.runOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("maintenance failed")
	}
}

// RunOnce 对外暴露单次维护接口。已有任务在运行时直接返回空结果。
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	return s.runOnce(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) (Report, error) {
	var rep Report
	if s.running.Swap(true) {
		return rep, nil
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()
	expired, err := s.store.ExpireContracts(ctx, now)
	if err != nil {
		return rep, fmt.Errorf("expire contracts: %w", err)
	}
	rep.ExpiredContracts = expired

	deleted, err := s.store.DeleteReadNotificationsBefore(ctx, now.Add(-s.retention))
	if err != nil {
		return rep, fmt.Errorf("delete read notifications: %w", err)
	}
	rep.DeletedNotifications = deleted

	if s.dedup != nil {
		rep.EvictedDedup = s.dedup.Evict()
	}

	s.logger.Info().
		Int64("expired_contracts", rep.ExpiredContracts).
		Int64("deleted_notifications", rep.DeletedNotifications).
		Int("evicted_dedup", rep.EvictedDedup).
		Msg("maintenance finished")
	return rep, nil
}

func defaultTicker(d time.Duration) ticker {
	t := time.NewTicker(d)
	return tickerWrapper{t}
}

type tickerWrapper struct {
	*time.Ticker
}

func (t tickerWrapper) C() <-chan time.Time { return t.Ticker.C }
func (t tickerWrapper) Stop()               { t.Ticker.Stop() }

func (s *Scheduler) startCron(ctx context.Context) error {
	if s.cron == nil {
		return fmt.Errorf("cron schedule missing")
	}

	for {
		next, err := s.cron.next(s.now())
		if err != nil {
			return fmt.Errorf("compute next cron time: %w", err)
		}
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.tick(ctx)
		}
	}
}

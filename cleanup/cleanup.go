// Package cleanup removes push tokens the provider no longer accepts.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/repo/tokenrepo"
	"github.com/lalternative/push-relay/sender"
)

const CName = "push.cleanup"

var log = logger.NewNamed(CName)

const (
	defaultSchedule       = "0 2 * * *"
	defaultTimeZone       = "Europe/Paris"
	defaultStaleAfterDays = 60
)

type configSource interface {
	GetCleanup() Config
}

type Config struct {
	Schedule       string `yaml:"schedule"`
	TimeZone       string `yaml:"timeZone"`
	StaleAfterDays int    `yaml:"staleAfterDays"`
	Workers        int    `yaml:"workers"`
	Disabled       bool   `yaml:"disabled"`
}

func (c Config) withDefaults() Config {
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.TimeZone == "" {
		c.TimeZone = defaultTimeZone
	}
	if c.StaleAfterDays <= 0 {
		c.StaleAfterDays = defaultStaleAfterDays
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// Stats are the outcome counters of one cleanup run.
type Stats struct {
	Scanned int
	Stale   int
	Removed int
	Failed  int
}

func New() Cleanup {
	return new(cleanup)
}

type Cleanup interface {
	// Cleanup probes every token older than the stale threshold and deletes the ones
	// the provider reports as invalid. Errors are logged, never returned.
	Cleanup(ctx context.Context) Stats
	app.ComponentRunnable
}

type cleanup struct {
	tokenRepo  tokenrepo.TokenRepo
	sender     sender.Sender
	conf       Config
	staleAfter time.Duration
	location   *time.Location
	now        func() time.Time

	cron         *cron.Cron
	runCtx       context.Context
	runCtxCancel context.CancelFunc
}

func (c *cleanup) Init(a *app.App) (err error) {
	c.tokenRepo = a.MustComponent(tokenrepo.CName).(tokenrepo.TokenRepo)
	c.sender = a.MustComponent(sender.CName).(sender.Sender)
	c.conf = a.MustComponent("config").(configSource).GetCleanup().withDefaults()
	c.staleAfter = time.Duration(c.conf.StaleAfterDays) * 24 * time.Hour
	if c.location, err = time.LoadLocation(c.conf.TimeZone); err != nil {
		return fmt.Errorf("cleanup time zone: %w", err)
	}
	c.now = time.Now
	c.runCtx, c.runCtxCancel = context.WithCancel(context.Background())
	return nil
}

func (c *cleanup) Name() (name string) {
	return CName
}

func (c *cleanup) Run(ctx context.Context) (err error) {
	if c.conf.Disabled {
		log.Info("token cleanup is disabled")
		return nil
	}
	cl := cronLogger{logger.NewNamedSugared(CName)}
	c.cron = cron.New(
		cron.WithLocation(c.location),
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	if _, err = c.cron.AddFunc(c.conf.Schedule, func() {
		c.Cleanup(c.runCtx)
	}); err != nil {
		return fmt.Errorf("cleanup schedule %q: %w", c.conf.Schedule, err)
	}
	c.cron.Start()
	log.Info("token cleanup scheduled", zap.String("schedule", c.conf.Schedule), zap.String("tz", c.location.String()))
	return nil
}

func (c *cleanup) Cleanup(ctx context.Context) Stats {
	st := time.Now()
	now := c.now()
	log.Info("starting token cleanup")

	var (
		scanned, stale, removed, failed atomic.Int64
		g                               errgroup.Group
	)
	g.SetLimit(c.conf.Workers)
	err := c.tokenRepo.ListAll(ctx, func(userId string, rec domain.TokenRecord) error {
		scanned.Add(1)
		if rec.Age(now) <= c.staleAfter {
			return nil
		}
		stale.Add(1)
		g.Go(func() error {
			switch c.checkToken(ctx, userId, rec) {
			case resultRemoved:
				removed.Add(1)
			case resultFailed:
				failed.Add(1)
			}
			return nil
		})
		return ctx.Err()
	})
	_ = g.Wait()

	stats := Stats{
		Scanned: int(scanned.Load()),
		Stale:   int(stale.Load()),
		Removed: int(removed.Load()),
		Failed:  int(failed.Load()),
	}
	fields := []zap.Field{
		zap.Int("scanned", stats.Scanned),
		zap.Int("stale", stats.Stale),
		zap.Int("removed", stats.Removed),
		zap.Int("failed", stats.Failed),
		zap.Duration("dur", time.Since(st)),
	}
	if err != nil {
		log.Error("token cleanup aborted", append(fields, zap.Error(err))...)
		return stats
	}
	log.Info("token cleanup completed", fields...)
	return stats
}

type checkResult uint8

const (
	resultKept checkResult = iota
	resultRemoved
	resultFailed
)

func (c *cleanup) checkToken(ctx context.Context, userId string, rec domain.TokenRecord) (res checkResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("token check panic", zap.String("userId", userId), zap.Any("panic", r), zap.Stack("stack"))
			res = resultFailed
		}
	}()
	err := c.sender.Probe(ctx, rec.Token)
	if err == nil {
		return resultKept
	}
	if !errors.Is(err, domain.ErrInvalidToken) {
		// transport failures say nothing about the token
		log.Warn("probe token failed", zap.String("userId", userId), zap.Error(err))
		return resultFailed
	}
	if err = c.tokenRepo.DeleteToken(ctx, userId); err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			log.Debug("invalid token already removed", zap.String("userId", userId))
			return resultKept
		}
		log.Error("remove invalid token failed", zap.String("userId", userId), zap.Error(err))
		return resultFailed
	}
	log.Info("removed invalid token", zap.String("userId", userId))
	return resultRemoved
}

func (c *cleanup) Close(ctx context.Context) (err error) {
	if c.runCtxCancel != nil {
		c.runCtxCancel()
	}
	if c.cron == nil {
		return nil
	}
	select {
	case <-c.cron.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// cronLogger routes cron messages to zap, routine ones at debug level.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (cl cronLogger) Info(msg string, keysAndValues ...any) {
	cl.l.Debugw(msg, keysAndValues...)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...any) {
	cl.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

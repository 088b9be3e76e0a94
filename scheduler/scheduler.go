//go:generate mockgen -destination mock_scheduler/mock_scheduler.go github.com/lalternative/push-relay/scheduler Scheduler

package scheduler

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/sender"
)

const CName = "push.scheduler"

var log = logger.NewNamed(CName)

var ErrClosed = errors.New("scheduler is closed")

const (
	defaultMaxDelay     = 24 * time.Hour
	defaultSendTimeout  = 30 * time.Second
	defaultPollInterval = time.Second
	defaultDeliveries   = 8
)

type configSource interface {
	GetSchedule() Config
}

type Config struct {
	// Durable keeps scheduled sends in redis so they survive restarts.
	Durable        bool `yaml:"durable"`
	MaxDelaySec    int  `yaml:"maxDelaySec"`
	SendTimeoutSec int  `yaml:"sendTimeoutSec"`
	PollIntervalMs int  `yaml:"pollIntervalMs"`
	// DeliveryWorkers caps the concurrent sends of one durable poll.
	DeliveryWorkers int `yaml:"deliveryWorkers"`
}

func (c Config) MaxDelay() time.Duration {
	if c.MaxDelaySec <= 0 {
		return defaultMaxDelay
	}
	return time.Duration(c.MaxDelaySec) * time.Second
}

func (c Config) SendTimeout() time.Duration {
	if c.SendTimeoutSec <= 0 {
		return defaultSendTimeout
	}
	return time.Duration(c.SendTimeoutSec) * time.Second
}

func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return defaultPollInterval
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c Config) Deliveries() int {
	if c.DeliveryWorkers <= 0 {
		return defaultDeliveries
	}
	return c.DeliveryWorkers
}

// Scheduler fires one send per ScheduledSend once FireAt is reached. The outcome is only logged.
// Sends can not be cancelled once scheduled.
type Scheduler interface {
	Schedule(ctx context.Context, send domain.ScheduledSend) (id string, err error)
	Pending(ctx context.Context) (count int, err error)
	app.ComponentRunnable
}

// New returns the in-memory scheduler, pending sends are lost when the process stops.
func New() Scheduler {
	return &memoryScheduler{timers: map[string]*time.Timer{}}
}

type delivery struct {
	sender      sender.Sender
	sendTimeout time.Duration
}

func (d *delivery) init(a *app.App) {
	d.sender = a.MustComponent(sender.CName).(sender.Sender)
	d.sendTimeout = a.MustComponent("config").(configSource).GetSchedule().SendTimeout()
}

func (d *delivery) deliver(send domain.ScheduledSend) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	st := time.Now()
	deliveryId, err := d.sender.SendToToken(ctx, send.Token, send.Payload)
	if err != nil {
		log.Error("scheduled send failed",
			zap.String("scheduleId", send.Id),
			zap.String("userId", send.UserId),
			zap.Duration("late", st.Sub(send.FireAt)),
			zap.Error(err),
		)
		return
	}
	log.Info("scheduled send delivered",
		zap.String("scheduleId", send.Id),
		zap.String("userId", send.UserId),
		zap.String("deliveryId", deliveryId),
		zap.Duration("dur", time.Since(st)),
	)
}

func newId() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base58.Encode(b)
}

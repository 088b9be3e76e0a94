package scheduler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/redisprovider"
)

const (
	scheduledKey = "push:scheduled"
	pollBatch    = 100
)

// NewDurable returns a scheduler keeping sends in a redis sorted set scored by fire time.
func NewDurable() Scheduler {
	return new(redisScheduler)
}

type redisScheduler struct {
	delivery
	client       redis.UniversalClient
	pollInterval time.Duration
	inflight     errgroup.Group
	now          func() time.Time
	runCtx       context.Context
	runCtxCancel context.CancelFunc
	done         chan struct{}
}

func (s *redisScheduler) Init(a *app.App) (err error) {
	s.delivery.init(a)
	s.client = a.MustComponent(redisprovider.CName).(redisprovider.RedisProvider).Redis()
	conf := a.MustComponent("config").(configSource).GetSchedule()
	s.pollInterval = conf.PollInterval()
	s.inflight.SetLimit(conf.Deliveries())
	s.now = time.Now
	s.runCtx, s.runCtxCancel = context.WithCancel(context.Background())
	return
}

func (s *redisScheduler) Name() (name string) {
	return CName
}

func (s *redisScheduler) Run(ctx context.Context) (err error) {
	s.done = make(chan struct{})
	go s.loop()
	return nil
}

func (s *redisScheduler) Schedule(ctx context.Context, send domain.ScheduledSend) (id string, err error) {
	if send.Id == "" {
		send.Id = newId()
	}
	if s.runCtx.Err() != nil {
		return "", ErrClosed
	}
	data, err := json.Marshal(send)
	if err != nil {
		return "", err
	}
	if err = s.client.ZAdd(ctx, scheduledKey, redis.Z{
		Score:  float64(send.FireAt.UnixMilli()),
		Member: string(data),
	}).Err(); err != nil {
		return "", err
	}
	return send.Id, nil
}

func (s *redisScheduler) Pending(ctx context.Context) (count int, err error) {
	n, err := s.client.ZCard(ctx, scheduledKey).Result()
	return int(n), err
}

func (s *redisScheduler) loop() {
	defer close(s.done)
	defer func() {
		_ = s.inflight.Wait()
	}()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.runCtx.Done():
			return
		case <-ticker.C:
			if err := s.poll(s.runCtx); err != nil && s.runCtx.Err() == nil {
				log.Warn("poll scheduled sends error", zap.Error(err))
			}
		}
	}
}

func (s *redisScheduler) poll(ctx context.Context) error {
	members, err := s.client.ZRangeByScore(ctx, scheduledKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(s.now().UnixMilli(), 10),
		Count: pollBatch,
	}).Result()
	if err != nil {
		return err
	}
	for _, member := range members {
		// whoever removes the member owns the send
		removed, err := s.client.ZRem(ctx, scheduledKey, member).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		var send domain.ScheduledSend
		if err = json.Unmarshal([]byte(member), &send); err != nil {
			log.Error("drop malformed scheduled send", zap.Error(err))
			continue
		}
		s.inflight.Go(func() error {
			s.deliver(send)
			return nil
		})
	}
	return nil
}

func (s *redisScheduler) Close(ctx context.Context) (err error) {
	if s.runCtxCancel != nil {
		s.runCtxCancel()
	}
	if s.done == nil {
		return nil
	}
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

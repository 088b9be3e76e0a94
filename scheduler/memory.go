package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/anyproto/any-sync/app"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
)

type memoryScheduler struct {
	delivery
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func (s *memoryScheduler) Init(a *app.App) (err error) {
	s.delivery.init(a)
	return
}

func (s *memoryScheduler) Name() (name string) {
	return CName
}

func (s *memoryScheduler) Run(ctx context.Context) (err error) {
	return nil
}

func (s *memoryScheduler) Schedule(ctx context.Context, send domain.ScheduledSend) (id string, err error) {
	if send.Id == "" {
		send.Id = newId()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	s.timers[send.Id] = time.AfterFunc(time.Until(send.FireAt), func() {
		s.fire(send)
	})
	return send.Id, nil
}

func (s *memoryScheduler) fire(send domain.ScheduledSend) {
	s.mu.Lock()
	if _, ok := s.timers[send.Id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.timers, send.Id)
	s.mu.Unlock()
	s.deliver(send)
}

func (s *memoryScheduler) Pending(ctx context.Context) (count int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers), nil
}

func (s *memoryScheduler) Close(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
		log.Warn("pending scheduled send dropped", zap.String("scheduleId", id))
	}
	return nil
}

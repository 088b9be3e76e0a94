package cleanup

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/repo/tokenrepo"
	"github.com/lalternative/push-relay/repo/tokenrepo/mock_tokenrepo"
	"github.com/lalternative/push-relay/sender"
	"github.com/lalternative/push-relay/sender/mock_sender"
)

var ctx = context.Background()

var now = time.Date(2026, 10, 14, 2, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func TestCleanup_Cleanup(t *testing.T) {
	t.Run("invalid stale token is removed", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "stale", UpdatedAt: now.Add(-61 * day)},
		})
		fx.sender.EXPECT().Probe(ctx, "stale").Return(fmt.Errorf("%w: unregistered", domain.ErrInvalidToken))
		fx.tokenRepo.EXPECT().DeleteToken(ctx, "u1").Return(nil)

		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 1, Stale: 1, Removed: 1}, stats)
	})
	t.Run("fresh token is never probed", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "fresh", UpdatedAt: now.Add(-30 * day)},
			"u2": {Token: "edge", UpdatedAt: now.Add(-60 * day)},
		})
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 2}, stats)
	})
	t.Run("valid stale token is kept", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "stale", UpdatedAt: now.Add(-90 * day)},
		})
		fx.sender.EXPECT().Probe(ctx, "stale").Return(nil)
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 1, Stale: 1}, stats)
	})
	t.Run("transport error keeps the token", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "stale", UpdatedAt: now.Add(-90 * day)},
		})
		fx.sender.EXPECT().Probe(ctx, "stale").Return(fmt.Errorf("%w: unavailable", domain.ErrTransport))
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 1, Stale: 1, Failed: 1}, stats)
	})
	t.Run("missing updatedAt is stale", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "old"},
		})
		fx.sender.EXPECT().Probe(ctx, "old").Return(domain.ErrInvalidToken)
		fx.tokenRepo.EXPECT().DeleteToken(ctx, "u1").Return(nil)
		stats := fx.Cleanup(ctx)
		assert.Equal(t, 1, stats.Removed)
	})
	t.Run("per user errors do not stop the run", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "t1", UpdatedAt: now.Add(-70 * day)},
			"u2": {Token: "t2", UpdatedAt: now.Add(-70 * day)},
			"u3": {Token: "t3", UpdatedAt: now.Add(-70 * day)},
		})
		fx.sender.EXPECT().Probe(ctx, gomock.Any()).Return(domain.ErrInvalidToken).Times(3)
		fx.tokenRepo.EXPECT().DeleteToken(ctx, "u1").Return(fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable))
		fx.tokenRepo.EXPECT().DeleteToken(ctx, "u2").Return(domain.ErrTokenNotFound)
		fx.tokenRepo.EXPECT().DeleteToken(ctx, "u3").Return(nil)
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 3, Stale: 3, Removed: 1, Failed: 1}, stats)
	})
	t.Run("list failure ends the run", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.tokenRepo.EXPECT().ListAll(ctx, gomock.Any()).Return(domain.ErrStoreUnavailable)
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{}, stats)
	})
	t.Run("worker pool handles each token once", func(t *testing.T) {
		fx := newFixture(t, Config{Workers: 4})
		records := map[string]domain.TokenRecord{}
		for i := range 20 {
			records[fmt.Sprintf("u%d", i)] = domain.TokenRecord{Token: fmt.Sprintf("t%d", i), UpdatedAt: now.Add(-100 * day)}
		}
		fx.list(records)
		for i := range 20 {
			fx.sender.EXPECT().Probe(ctx, fmt.Sprintf("t%d", i)).Return(domain.ErrInvalidToken)
			fx.tokenRepo.EXPECT().DeleteToken(ctx, fmt.Sprintf("u%d", i)).Return(nil)
		}
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 20, Stale: 20, Removed: 20}, stats)
	})
	t.Run("panic in a token check is contained", func(t *testing.T) {
		fx := newFixture(t, Config{})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "t1", UpdatedAt: now.Add(-70 * day)},
			"u2": {Token: "t2", UpdatedAt: now.Add(-70 * day)},
		})
		fx.sender.EXPECT().Probe(ctx, "t1").DoAndReturn(func(context.Context, string) error {
			panic("provider bug")
		})
		fx.sender.EXPECT().Probe(ctx, "t2").Return(domain.ErrInvalidToken)
		fx.tokenRepo.EXPECT().DeleteToken(ctx, "u2").Return(nil)
		stats := fx.Cleanup(ctx)
		assert.Equal(t, Stats{Scanned: 2, Stale: 2, Removed: 1, Failed: 1}, stats)
	})
	t.Run("custom threshold", func(t *testing.T) {
		fx := newFixture(t, Config{StaleAfterDays: 10})
		fx.list(map[string]domain.TokenRecord{
			"u1": {Token: "t1", UpdatedAt: now.Add(-11 * day)},
		})
		fx.sender.EXPECT().Probe(ctx, "t1").Return(nil)
		assert.Equal(t, 1, fx.Cleanup(ctx).Stale)
	})
}

func TestCleanup_Run(t *testing.T) {
	t.Run("trigger survives a panicking run", func(t *testing.T) {
		fx := startFixture(t, Config{Schedule: "@every 1s", TimeZone: "UTC"})
		var calls atomic.Int32
		again := make(chan struct{})
		fx.tokenRepo.EXPECT().ListAll(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, func(string, domain.TokenRecord) error) error {
			switch calls.Add(1) {
			case 1:
				panic("store bug")
			case 2:
				close(again)
			}
			return nil
		}).AnyTimes()

		select {
		case <-again:
		case <-time.After(5 * time.Second):
			t.Fatal("cleanup was not triggered after a panic")
		}
	})
	t.Run("invalid schedule", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		a := new(app.App)
		tr := mock_tokenrepo.NewMockTokenRepo(ctrl)
		tr.EXPECT().Name().Return(tokenrepo.CName).AnyTimes()
		tr.EXPECT().Init(gomock.Any()).AnyTimes()
		tr.EXPECT().Run(gomock.Any()).AnyTimes()
		tr.EXPECT().Close(gomock.Any()).AnyTimes()
		s := mock_sender.NewMockSender(ctrl)
		s.EXPECT().Name().Return(sender.CName).AnyTimes()
		s.EXPECT().Init(gomock.Any()).AnyTimes()
		a.Register(&testConfig{Config{Schedule: "not a schedule"}}).Register(tr).Register(s).Register(New())
		require.Error(t, a.Start(ctx))
	})
}

func TestCleanup_Init(t *testing.T) {
	t.Run("unknown time zone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		a := new(app.App)
		tr := mock_tokenrepo.NewMockTokenRepo(ctrl)
		tr.EXPECT().Name().Return(tokenrepo.CName).AnyTimes()
		tr.EXPECT().Init(gomock.Any()).AnyTimes()
		tr.EXPECT().Run(gomock.Any()).AnyTimes()
		tr.EXPECT().Close(gomock.Any()).AnyTimes()
		s := mock_sender.NewMockSender(ctrl)
		s.EXPECT().Name().Return(sender.CName).AnyTimes()
		s.EXPECT().Init(gomock.Any()).AnyTimes()
		a.Register(&testConfig{Config{TimeZone: "Mars/Olympus"}}).Register(tr).Register(s).Register(New())
		require.Error(t, a.Start(ctx))
	})
	t.Run("defaults", func(t *testing.T) {
		c := Config{}.withDefaults()
		assert.Equal(t, "0 2 * * *", c.Schedule)
		assert.Equal(t, "Europe/Paris", c.TimeZone)
		assert.Equal(t, 60, c.StaleAfterDays)
		assert.Equal(t, 1, c.Workers)
	})
}

type fixture struct {
	*cleanup
	tokenRepo *mock_tokenrepo.MockTokenRepo
	sender    *mock_sender.MockSender
	a         *app.App
}

func newFixture(t *testing.T, conf Config) *fixture {
	conf.Disabled = true
	fx := startFixture(t, conf)
	fx.now = func() time.Time { return now }
	return fx
}

func startFixture(t *testing.T, conf Config) *fixture {
	ctrl := gomock.NewController(t)
	fx := &fixture{
		cleanup:   New().(*cleanup),
		tokenRepo: mock_tokenrepo.NewMockTokenRepo(ctrl),
		sender:    mock_sender.NewMockSender(ctrl),
		a:         new(app.App),
	}
	fx.tokenRepo.EXPECT().Name().Return(tokenrepo.CName).AnyTimes()
	fx.tokenRepo.EXPECT().Init(gomock.Any()).AnyTimes()
	fx.tokenRepo.EXPECT().Run(gomock.Any()).AnyTimes()
	fx.tokenRepo.EXPECT().Close(gomock.Any()).AnyTimes()
	fx.sender.EXPECT().Name().Return(sender.CName).AnyTimes()
	fx.sender.EXPECT().Init(gomock.Any()).AnyTimes()

	fx.a.Register(&testConfig{conf}).
		Register(fx.tokenRepo).
		Register(fx.sender).
		Register(fx.cleanup)
	require.NoError(t, fx.a.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, fx.a.Close(ctx))
	})
	return fx
}

func (fx *fixture) list(records map[string]domain.TokenRecord) {
	fx.tokenRepo.EXPECT().ListAll(ctx, gomock.Any()).DoAndReturn(func(ctx context.Context, fn func(string, domain.TokenRecord) error) error {
		for userId, rec := range records {
			if err := fn(userId, rec); err != nil {
				return err
			}
		}
		return nil
	})
}

type testConfig struct {
	cleanup Config
}

func (c *testConfig) Init(a *app.App) (err error) {
	return
}

func (c *testConfig) Name() (name string) {
	return "config"
}

func (c *testConfig) GetCleanup() Config {
	return c.cleanup
}

package push

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/metric"
	"github.com/lalternative/push-relay/payload"
	"github.com/lalternative/push-relay/repo/tokenrepo"
	"github.com/lalternative/push-relay/scheduler"
	"github.com/lalternative/push-relay/sender"
)

const CName = "push"

var log = logger.NewNamed(CName)

type configSource interface {
	GetHTTP() Config
	GetSchedule() scheduler.Config
}

type Config struct {
	ListenAddr string `yaml:"listenAddr"`
	// AllowedOrigins lists the CORS origins, empty or "*" allows any origin.
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AndroidChannelId string   `yaml:"androidChannelId"`
}

func New() Push {
	return new(push)
}

// Notification is the user visible part of a push request.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

type Push interface {
	// SendToUser delivers the notification to the token registered for the user.
	SendToUser(ctx context.Context, userId string, n Notification) (deliveryId string, err error)
	SendToTopic(ctx context.Context, topic domain.Topic, n Notification) (deliveryId string, err error)
	// ScheduleToUser captures the user token now and sends the notification after delay.
	ScheduleToUser(ctx context.Context, userId string, n Notification, delay time.Duration) (scheduleId string, err error)
	Handler() http.Handler
	app.ComponentRunnable
}

type push struct {
	tokenRepo tokenrepo.TokenRepo
	sender    sender.Sender
	scheduler scheduler.Scheduler
	metric    metric.Metric
	conf      Config
	hints     domain.Hints
	maxDelay  time.Duration
	handler   *handler
	engine    *gin.Engine
	srv       *http.Server
}

func (p *push) Init(a *app.App) (err error) {
	p.tokenRepo = a.MustComponent(tokenrepo.CName).(tokenrepo.TokenRepo)
	p.sender = a.MustComponent(sender.CName).(sender.Sender)
	p.scheduler = a.MustComponent(scheduler.CName).(scheduler.Scheduler)
	p.metric = a.MustComponent(metric.CName).(metric.Metric)
	conf := a.MustComponent("config").(configSource)
	p.conf = conf.GetHTTP()
	p.maxDelay = conf.GetSchedule().MaxDelay()
	p.hints = payload.HintsWithChannel(p.conf.AndroidChannelId)
	p.handler = newHandler(p, registerMetrics(p.metric.Registry()))
	p.engine = p.handler.routes(p.conf.AllowedOrigins, p.metric.Handler())
	return nil
}

func (p *push) Name() (name string) {
	return CName
}

func (p *push) Run(ctx context.Context) (err error) {
	if p.conf.ListenAddr == "" {
		log.Warn("http listen address is not configured, server is disabled")
		return nil
	}
	ln, err := net.Listen("tcp", p.conf.ListenAddr)
	if err != nil {
		return err
	}
	p.srv = &http.Server{
		Handler:           p.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if serveErr := p.srv.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(serveErr))
		}
	}()
	log.Info("http server started", zap.String("addr", ln.Addr().String()))
	return nil
}

func (p *push) Handler() http.Handler {
	return p.engine
}

func (p *push) SendToUser(ctx context.Context, userId string, n Notification) (deliveryId string, err error) {
	rec, err := p.tokenRepo.GetToken(ctx, userId)
	if err != nil {
		return "", err
	}
	return p.sender.SendToToken(ctx, rec.Token, p.build(n))
}

func (p *push) SendToTopic(ctx context.Context, topic domain.Topic, n Notification) (deliveryId string, err error) {
	return p.sender.SendToTopic(ctx, topic, p.build(n))
}

func (p *push) ScheduleToUser(ctx context.Context, userId string, n Notification, delay time.Duration) (scheduleId string, err error) {
	rec, err := p.tokenRepo.GetToken(ctx, userId)
	if err != nil {
		return "", err
	}
	return p.scheduler.Schedule(ctx, domain.ScheduledSend{
		UserId:  userId,
		Token:   rec.Token,
		Payload: p.build(n),
		FireAt:  time.Now().Add(delay),
	})
}

func (p *push) build(n Notification) domain.Payload {
	return payload.Build(n.Title, n.Body, n.Data, p.hints)
}

func (p *push) Close(ctx context.Context) (err error) {
	if p.srv != nil {
		return p.srv.Shutdown(ctx)
	}
	return nil
}

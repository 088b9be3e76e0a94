//go:generate mockgen -destination mock_sender/mock_sender.go github.com/lalternative/push-relay/sender Sender

package sender

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/metric"
	"github.com/lalternative/push-relay/payload"
)

const CName = "push.sender"

var log = logger.NewNamed(CName)

var errNoProvider = fmt.Errorf("%w: push provider is not registered", domain.ErrTransport)

func New() Sender {
	return new(sender)
}

// Sender delivers payloads through the registered provider. Every call makes exactly one
// provider request, failures are returned as domain.ErrInvalidToken or domain.ErrTransport.
type Sender interface {
	SendToToken(ctx context.Context, token string, p domain.Payload) (deliveryId string, err error)
	SendToTopic(ctx context.Context, topic domain.Topic, p domain.Payload) (deliveryId string, err error)
	// Probe checks the token with a dry-run request, nothing is shown to the user.
	Probe(ctx context.Context, token string) (err error)
	RegisterProvider(provider Provider)
	app.Component
}

// Provider is the external push service. Implementations map their own failure codes to
// domain.ErrInvalidToken; any other error is treated as a transport failure.
type Provider interface {
	SendToToken(ctx context.Context, token string, p domain.Payload) (deliveryId string, err error)
	SendToTopic(ctx context.Context, topic domain.Topic, p domain.Payload) (deliveryId string, err error)
	DryRun(ctx context.Context, token string, p domain.Payload) (err error)
}

type sender struct {
	provider Provider
	metrics  *senderMetrics
}

func (s *sender) Init(a *app.App) (err error) {
	s.metrics = registerMetrics(a.MustComponent(metric.CName).(metric.Metric).Registry())
	return
}

func (s *sender) Name() (name string) {
	return CName
}

func (s *sender) RegisterProvider(provider Provider) {
	s.provider = provider
}

func (s *sender) SendToToken(ctx context.Context, token string, p domain.Payload) (deliveryId string, err error) {
	defer s.observe("token", time.Now(), &err)
	if s.provider == nil {
		return "", errNoProvider
	}
	if deliveryId, err = s.provider.SendToToken(ctx, token, p); err != nil {
		return "", classify(err)
	}
	log.Debug("push sent", zap.String("deliveryId", deliveryId))
	return
}

func (s *sender) SendToTopic(ctx context.Context, topic domain.Topic, p domain.Payload) (deliveryId string, err error) {
	defer s.observe("topic", time.Now(), &err)
	if s.provider == nil {
		return "", errNoProvider
	}
	if deliveryId, err = s.provider.SendToTopic(ctx, topic, p); err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrInvalidToken) {
			// topics have no token to invalidate
			err = fmt.Errorf("%w: %w", domain.ErrTransport, err)
		}
		return "", err
	}
	log.Debug("push sent to topic", zap.String("topic", topic.String()), zap.String("deliveryId", deliveryId))
	return
}

func (s *sender) Probe(ctx context.Context, token string) (err error) {
	defer s.observe("probe", time.Now(), &err)
	if s.provider == nil {
		return errNoProvider
	}
	if err = s.provider.DryRun(ctx, token, payload.Probe()); err != nil {
		return classify(err)
	}
	return nil
}

func (s *sender) observe(op string, st time.Time, err *error) {
	s.metrics.duration.WithLabelValues(op).Observe(time.Since(st).Seconds())
	s.metrics.requests.WithLabelValues(op, resultLabel(*err)).Inc()
}

func classify(err error) error {
	if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	default:
		return "transport_error"
	}
}

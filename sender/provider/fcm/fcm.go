package fcm

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/anyproto/any-sync/app"
	"github.com/anyproto/any-sync/app/logger"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/firebaseprovider"
	"github.com/lalternative/push-relay/sender"
)

const CName = "push.provider.fcm"

var log = logger.NewNamed(CName)

func New() FCM {
	return new(fcm)
}

type FCM interface {
	app.Component
}

type fcm struct {
}

func (f *fcm) Init(a *app.App) (err error) {
	s := a.MustComponent(sender.CName).(sender.Sender)
	fb := a.MustComponent(firebaseprovider.CName).(firebaseprovider.FirebaseProvider)
	client, err := fb.Messaging(context.Background())
	if err != nil {
		return fmt.Errorf("init fcm client: %w", err)
	}
	s.RegisterProvider(&fcmSender{client: client})
	return
}

func (f *fcm) Name() (name string) {
	return CName
}

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
	SendDryRun(ctx context.Context, message *messaging.Message) (string, error)
}

type fcmSender struct {
	client messagingClient
}

func (f *fcmSender) SendToToken(ctx context.Context, token string, p domain.Payload) (deliveryId string, err error) {
	msg := buildFcmMessage(p)
	msg.Token = token
	if deliveryId, err = f.client.Send(ctx, msg); err != nil {
		return "", mapError(err)
	}
	return
}

func (f *fcmSender) SendToTopic(ctx context.Context, topic domain.Topic, p domain.Payload) (deliveryId string, err error) {
	msg := buildFcmMessage(p)
	msg.Topic = topic.String()
	if deliveryId, err = f.client.Send(ctx, msg); err != nil {
		log.Warn("fcm topic send error", zap.String("topic", topic.String()), zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	return
}

func (f *fcmSender) DryRun(ctx context.Context, token string, p domain.Payload) (err error) {
	msg := buildFcmMessage(p)
	msg.Token = token
	if _, err = f.client.SendDryRun(ctx, msg); err != nil {
		return mapError(err)
	}
	return nil
}

func mapError(err error) error {
	if messaging.IsInvalidArgument(err) || messaging.IsUnregistered(err) {
		log.Info("fcm rejected token", zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	log.Warn("fcm returned error", zap.Error(err))
	return fmt.Errorf("%w: %w", domain.ErrTransport, err)
}

func buildFcmMessage(p domain.Payload) *messaging.Message {
	msg := &messaging.Message{
		Data: p.Data,
	}
	if !p.HasNotification() {
		return msg
	}
	msg.Notification = &messaging.Notification{
		Title: p.Title,
		Body:  p.Body,
	}
	msg.Android = &messaging.AndroidConfig{
		Priority: p.Hints.Android.Priority,
		Notification: &messaging.AndroidNotification{
			ChannelID: p.Hints.Android.ChannelId,
			Priority:  androidPriority(p.Hints.Android.Priority),
		},
	}
	msg.APNS = &messaging.APNSConfig{
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				ContentAvailable: p.Hints.APNS.ContentAvailable,
				Sound:            p.Hints.APNS.Sound,
			},
		},
	}
	return msg
}

func androidPriority(priority string) messaging.AndroidNotificationPriority {
	switch priority {
	case "high":
		return messaging.PriorityHigh
	case "max":
		return messaging.PriorityMax
	case "low":
		return messaging.PriorityLow
	case "min":
		return messaging.PriorityMin
	default:
		return messaging.PriorityDefault
	}
}

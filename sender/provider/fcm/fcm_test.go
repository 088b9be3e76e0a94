package fcm

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalternative/push-relay/domain"
	"github.com/lalternative/push-relay/payload"
)

var ctx = context.Background()

func TestBuildFcmMessage(t *testing.T) {
	t.Run("notification", func(t *testing.T) {
		msg := buildFcmMessage(payload.Build("title", "body", map[string]string{"k": "v"}, payload.DefaultHints()))
		require.NotNil(t, msg.Notification)
		assert.Equal(t, "title", msg.Notification.Title)
		assert.Equal(t, "body", msg.Notification.Body)
		assert.Equal(t, map[string]string{"k": "v"}, msg.Data)

		require.NotNil(t, msg.Android)
		assert.Equal(t, "high", msg.Android.Priority)
		require.NotNil(t, msg.Android.Notification)
		assert.Equal(t, "high_importance_channel", msg.Android.Notification.ChannelID)
		assert.Equal(t, messaging.PriorityHigh, msg.Android.Notification.Priority)

		require.NotNil(t, msg.APNS)
		require.NotNil(t, msg.APNS.Payload)
		require.NotNil(t, msg.APNS.Payload.Aps)
		assert.True(t, msg.APNS.Payload.Aps.ContentAvailable)
		assert.Equal(t, "default", msg.APNS.Payload.Aps.Sound)
	})
	t.Run("probe is data only", func(t *testing.T) {
		msg := buildFcmMessage(payload.Probe())
		assert.Nil(t, msg.Notification)
		assert.Nil(t, msg.Android)
		assert.Nil(t, msg.APNS)
		assert.Equal(t, map[string]string{"type": "test"}, msg.Data)
	})
}

func TestFcmSender(t *testing.T) {
	p := payload.Build("title", "body", nil, payload.DefaultHints())
	t.Run("send to token", func(t *testing.T) {
		client := &testClient{id: "projects/p/messages/1"}
		s := &fcmSender{client: client}
		id, err := s.SendToToken(ctx, "tok", p)
		require.NoError(t, err)
		assert.Equal(t, "projects/p/messages/1", id)
		require.Len(t, client.sent, 1)
		assert.Equal(t, "tok", client.sent[0].Token)
		assert.Empty(t, client.sent[0].Topic)
		assert.False(t, client.dryRun)
	})
	t.Run("send to topic", func(t *testing.T) {
		client := &testClient{id: "id"}
		s := &fcmSender{client: client}
		_, err := s.SendToTopic(ctx, "news", p)
		require.NoError(t, err)
		require.Len(t, client.sent, 1)
		assert.Equal(t, "news", client.sent[0].Topic)
		assert.Empty(t, client.sent[0].Token)
	})
	t.Run("dry run", func(t *testing.T) {
		client := &testClient{}
		s := &fcmSender{client: client}
		require.NoError(t, s.DryRun(ctx, "tok", payload.Probe()))
		assert.True(t, client.dryRun)
		require.Len(t, client.sent, 1)
		assert.Equal(t, "tok", client.sent[0].Token)
	})
	t.Run("generic errors are transport errors", func(t *testing.T) {
		client := &testClient{err: errors.New("503 unavailable")}
		s := &fcmSender{client: client}
		_, err := s.SendToToken(ctx, "tok", p)
		require.ErrorIs(t, err, domain.ErrTransport)
		assert.NotErrorIs(t, err, domain.ErrInvalidToken)
		err = s.DryRun(ctx, "tok", payload.Probe())
		require.ErrorIs(t, err, domain.ErrTransport)
		_, err = s.SendToTopic(ctx, "news", p)
		require.ErrorIs(t, err, domain.ErrTransport)
	})
}

type testClient struct {
	id     string
	err    error
	sent   []*messaging.Message
	dryRun bool
}

func (c *testClient) Send(ctx context.Context, message *messaging.Message) (string, error) {
	c.sent = append(c.sent, message)
	return c.id, c.err
}

func (c *testClient) SendDryRun(ctx context.Context, message *messaging.Message) (string, error) {
	c.dryRun = true
	c.sent = append(c.sent, message)
	return c.id, c.err
}

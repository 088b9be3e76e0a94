package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lalternative/push-relay/domain"
)

func TestBuild(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p := Build("hello", "world", nil, DefaultHints())
		assert.Equal(t, "hello", p.Title)
		assert.Equal(t, "world", p.Body)
		assert.NotNil(t, p.Data)
		assert.Empty(t, p.Data)
		assert.Equal(t, domain.AndroidHints{Priority: "high", ChannelId: "high_importance_channel"}, p.Hints.Android)
		assert.Equal(t, domain.APNSHints{ContentAvailable: true, Sound: "default"}, p.Hints.APNS)
	})
	t.Run("data is copied", func(t *testing.T) {
		data := map[string]string{"k": "v"}
		p := Build("t", "b", data, DefaultHints())
		data["k"] = "changed"
		assert.Equal(t, "v", p.Data["k"])
	})
	t.Run("custom channel", func(t *testing.T) {
		assert.Equal(t, "reminders", HintsWithChannel("reminders").Android.ChannelId)
		assert.Equal(t, DefaultChannelId, HintsWithChannel("").Android.ChannelId)
	})
}

func TestProbe(t *testing.T) {
	p := Probe()
	assert.False(t, p.HasNotification())
	assert.Equal(t, map[string]string{"type": "test"}, p.Data)
}

// Package payload builds delivery payloads for the push sender.
package payload

import (
	"maps"

	"github.com/lalternative/push-relay/domain"
)

const (
	DefaultChannelId = "high_importance_channel"
	PriorityHigh     = "high"
	SoundDefault     = "default"
)

// DefaultHints enables high priority delivery on android and background delivery on iOS.
func DefaultHints() domain.Hints {
	return HintsWithChannel(DefaultChannelId)
}

func HintsWithChannel(channelId string) domain.Hints {
	if channelId == "" {
		channelId = DefaultChannelId
	}
	return domain.Hints{
		Android: domain.AndroidHints{
			Priority:  PriorityHigh,
			ChannelId: channelId,
		},
		APNS: domain.APNSHints{
			ContentAvailable: true,
			Sound:            SoundDefault,
		},
	}
}

func Build(title, body string, data map[string]string, hints domain.Hints) domain.Payload {
	d := make(map[string]string, len(data))
	maps.Copy(d, data)
	return domain.Payload{
		Title: title,
		Body:  body,
		Data:  d,
		Hints: hints,
	}
}

// Probe is the data-only payload sent with dry-run token checks.
func Probe() domain.Payload {
	return domain.Payload{
		Data: map[string]string{"type": "test"},
	}
}

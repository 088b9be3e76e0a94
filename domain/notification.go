package domain

import "time"

// Hints are the platform specific delivery options attached to every payload.
type Hints struct {
	Android AndroidHints
	APNS    APNSHints
}

type AndroidHints struct {
	Priority  string
	ChannelId string
}

type APNSHints struct {
	ContentAvailable bool
	Sound            string
}

// Payload is a platform neutral notification plus delivery hints.
type Payload struct {
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body,omitempty"`
	Data  map[string]string `json:"data"`
	Hints Hints             `json:"hints"`
}

// HasNotification is false for data-only payloads such as probes.
func (p Payload) HasNotification() bool {
	return p.Title != "" || p.Body != ""
}

// ScheduledSend is a payload captured for delivery to a token at FireAt.
type ScheduledSend struct {
	Id      string    `json:"id"`
	UserId  string    `json:"userId"`
	Token   string    `json:"token"`
	Payload Payload   `json:"payload"`
	FireAt  time.Time `json:"fireAt"`
}

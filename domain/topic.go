package domain

import (
	"regexp"
	"strings"
)

const topicPrefix = "/topics/"

var topicRe = regexp.MustCompile(`^[a-zA-Z0-9-_.~%]+$`)

// Topic is a named FCM broadcast channel.
type Topic string

// NewTopic normalizes the topic name, the FCM "/topics/" prefix is optional.
func NewTopic(name string) Topic {
	return Topic(strings.TrimPrefix(name, topicPrefix))
}

func (t Topic) Valid() bool {
	return topicRe.MatchString(string(t))
}

func (t Topic) String() string {
	return string(t)
}

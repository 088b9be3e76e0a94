package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenRecord_Age(t *testing.T) {
	now := time.Now()
	rec := TokenRecord{Token: "t", UpdatedAt: now.Add(-time.Hour)}
	assert.Equal(t, time.Hour, rec.Age(now))

	missing := TokenRecord{Token: "t"}
	assert.Greater(t, missing.Age(now), 50*365*24*time.Hour)
}

func TestValidUserId(t *testing.T) {
	assert.True(t, ValidUserId("u1-AbC_9"))
	for _, id := range []string{"", "a/b", "a.b", "a$", "#a", "a[0]", strings.Repeat("x", 769)} {
		assert.False(t, ValidUserId(id), id)
	}
}

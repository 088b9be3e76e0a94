package tokenrepo

import (
	"context"
	"strconv"
	"time"

	"firebase.google.com/go/v4/db"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
)

const (
	usersPath    = "users"
	listPageSize = 500
)

type rtdbStore struct {
	client *db.Client
}

type rtdbToken struct {
	Token     string `json:"token"`
	UpdatedAt any    `json:"updatedAt"`
}

func (t rtdbToken) record() domain.TokenRecord {
	return domain.TokenRecord{
		Token:     t.Token,
		UpdatedAt: parseUpdatedAt(t.UpdatedAt),
	}
}

type rtdbUser struct {
	FcmToken *rtdbToken `json:"fcmToken"`
}

func tokenPath(userId string) string {
	return usersPath + "/" + userId + "/fcmToken"
}

func (s *rtdbStore) get(ctx context.Context, userId string) (domain.TokenRecord, error) {
	var t rtdbToken
	if err := s.client.NewRef(tokenPath(userId)).Get(ctx, &t); err != nil {
		return domain.TokenRecord{}, storeErr(err)
	}
	if t.Token == "" {
		return domain.TokenRecord{}, domain.ErrTokenNotFound
	}
	return t.record(), nil
}

func (s *rtdbStore) list(ctx context.Context, fn func(userId string, rec domain.TokenRecord) error) error {
	var lastKey string
	for {
		q := s.client.NewRef(usersPath).OrderByKey()
		limit := listPageSize
		if lastKey != "" {
			// StartAt is inclusive, the first node repeats the previous page tail
			q = q.StartAt(lastKey)
			limit++
		}
		nodes, err := q.LimitToFirst(limit).GetOrdered(ctx)
		if err != nil {
			return storeErr(err)
		}
		var (
			seen    int
			nextKey = lastKey
		)
		for _, node := range nodes {
			userId := node.Key()
			if userId == lastKey {
				continue
			}
			seen++
			nextKey = userId
			var u rtdbUser
			if err = node.Unmarshal(&u); err != nil {
				log.Warn("skip malformed user record", zap.String("userId", userId), zap.Error(err))
				continue
			}
			if u.FcmToken == nil || u.FcmToken.Token == "" {
				continue
			}
			if err = fn(userId, u.FcmToken.record()); err != nil {
				return err
			}
		}
		if seen < listPageSize {
			return nil
		}
		lastKey = nextKey
	}
}

func (s *rtdbStore) remove(ctx context.Context, userId string) error {
	ref := s.client.NewRef(tokenPath(userId))
	var existing any
	if err := ref.Get(ctx, &existing); err != nil {
		return storeErr(err)
	}
	if existing == nil {
		return domain.ErrTokenNotFound
	}
	if err := ref.Delete(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// parseUpdatedAt accepts epoch milliseconds as a number or a string, or an RFC 3339 string.
// Anything else is reported as the zero time.
func parseUpdatedAt(v any) time.Time {
	switch val := v.(type) {
	case float64:
		return time.UnixMilli(int64(val))
	case string:
		if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
			return time.UnixMilli(ms)
		}
		if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
			return t
		}
	}
	return time.Time{}
}

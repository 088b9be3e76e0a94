package tokenrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lalternative/push-relay/domain"
)

const collName = "users"

type mongoStore struct {
	coll *mongo.Collection
}

type userDoc struct {
	Id       string    `bson:"_id"`
	FcmToken *tokenDoc `bson:"fcmToken,omitempty"`
}

// tokenDoc keeps updatedAt raw, clients write it as a date, a number of ms or a string.
type tokenDoc struct {
	Token     string        `bson:"token"`
	UpdatedAt bson.RawValue `bson:"updatedAt"`
}

func (t tokenDoc) record() domain.TokenRecord {
	return domain.TokenRecord{
		Token:     t.Token,
		UpdatedAt: rawUpdatedAt(t.UpdatedAt),
	}
}

func rawUpdatedAt(v bson.RawValue) time.Time {
	switch v.Type {
	case bson.TypeDateTime:
		return v.Time()
	case bson.TypeDouble:
		return parseUpdatedAt(v.Double())
	case bson.TypeInt64:
		return time.UnixMilli(v.Int64())
	case bson.TypeInt32:
		return time.UnixMilli(int64(v.Int32()))
	case bson.TypeString:
		return parseUpdatedAt(v.StringValue())
	}
	return time.Time{}
}

var hasToken = bson.D{{Key: "fcmToken.token", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}}}

func (s *mongoStore) get(ctx context.Context, userId string) (domain.TokenRecord, error) {
	var doc userDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userId}}, options.FindOne().SetProjection(bson.D{{Key: "fcmToken", Value: 1}})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.TokenRecord{}, domain.ErrTokenNotFound
		}
		return domain.TokenRecord{}, storeErr(err)
	}
	if doc.FcmToken == nil || doc.FcmToken.Token == "" {
		return domain.TokenRecord{}, domain.ErrTokenNotFound
	}
	return doc.FcmToken.record(), nil
}

func (s *mongoStore) list(ctx context.Context, fn func(userId string, rec domain.TokenRecord) error) (err error) {
	cur, err := s.coll.Find(ctx, hasToken, options.Find().SetProjection(bson.D{{Key: "fcmToken", Value: 1}}))
	if err != nil {
		return storeErr(err)
	}
	defer func() {
		_ = cur.Close(ctx)
	}()
	for cur.Next(ctx) {
		var doc userDoc
		if err = cur.Decode(&doc); err != nil {
			userId, _ := cur.Current.Lookup("_id").StringValueOK()
			log.Warn("skip malformed user record", zap.String("userId", userId), zap.Error(err))
			continue
		}
		if doc.FcmToken == nil || doc.FcmToken.Token == "" {
			continue
		}
		if err = fn(doc.Id, doc.FcmToken.record()); err != nil {
			return err
		}
	}
	if err = cur.Err(); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *mongoStore) remove(ctx context.Context, userId string) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userId}, {Key: "fcmToken", Value: bson.D{{Key: "$exists", Value: true}}}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "fcmToken", Value: ""}}}},
	)
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// ResetToken is a single-use password reset credential. Only the hash is stored.
type ResetToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	TokenHash string             `bson:"token_hash"`
	ExpiresAt time.Time          `bson:"expires_at"`
	UsedAt    *time.Time         `bson:"used_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (s *Store) EnsureResetTokenIndexes(ctx context.Context) error {
	coll := s.DB.Collection(colResetTokens)
	// TTL
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expire"),
	}); err != nil {
		return err
	}
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token_hash", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_token_hash"),
	})
	return err
}

func (s *Store) CreateResetToken(ctx context.Context, rt ResetToken) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.reset_token.insert",
		tracer.Tag("user_id", rt.UserID.Hex()),
	)
	defer sp.Finish()

	rt.CreatedAt = time.Now().UTC()
	_, err := s.DB.Collection(colResetTokens).InsertOne(ctx, rt)
	if IsDup(err) {
		return ErrDuplicate
	}
	if err != nil {
		sp.SetTag("error", err)
	}
	return err
}

// ConsumeResetToken marks the token used and returns it, once. Unknown, used or expired
// tokens return nil, nil.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time) (*ResetToken, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.reset_token.consume")
	defer sp.Finish()

	res := s.DB.Collection(colResetTokens).FindOneAndUpdate(
		ctx,
		bson.M{"token_hash": tokenHash, "used_at": bson.M{"$exists": false}, "expires_at": bson.M{"$gt": now}},
		bson.M{"$set": bson.M{"used_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var rt ResetToken
	if err := res.Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		sp.SetTag("error", err)
		return nil, err
	}
	return &rt, nil
}

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

func (s *Store) EnsureUserIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_google_id"),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}},
			Options: options.Index().SetName("role_active"),
		},
	})
	return err
}

// CreateUser inserts u and sets its ID. A taken email or google id yields ErrEmailExists.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.user.insert",
		tracer.Tag("provider", string(u.Provider)),
		tracer.Tag("role", string(u.Role)),
	)
	defer sp.Finish()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := s.users().InsertOne(ctx, u); err != nil {
		if IsDup(err) {
			return ErrEmailExists
		}
		sp.SetTag("error", err)
		return err
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, op string, filter bson.M) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.user."+op)
	defer sp.Finish()

	var u domain.User
	err := s.users().FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail returns nil, nil when no account uses email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "find_by_email", bson.M{"email": email})
}

func (s *Store) FindLocalUser(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "find_local", bson.M{"email": email, "provider": domain.ProviderLocal})
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findOne(ctx, "find_by_id", bson.M{"_id": id})
}

// FindGoogleUser matches on the google subject, or on email among google accounts.
func (s *Store) FindGoogleUser(ctx context.Context, googleID, email string) (*domain.User, error) {
	return s.findOne(ctx, "find_google", bson.M{"$or": bson.A{
		bson.M{"google_id": googleID},
		bson.M{"email": email, "provider": domain.ProviderGoogle},
	}})
}

func (s *Store) updateByID(ctx context.Context, op string, id primitive.ObjectID, set bson.M) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.user."+op)
	defer sp.Finish()

	res, err := s.users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return s.updateByID(ctx, "touch_login", id, bson.M{"last_login": at, "updated_at": at})
}

func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.updateByID(ctx, "set_password", id, bson.M{"password_hash": hash, "updated_at": time.Now().UTC()})
}

// SaveProfile persists the user-editable fields of u. Identity, role and seller counters are never written.
func (s *Store) SaveProfile(ctx context.Context, u *domain.User) error {
	set := bson.M{
		"full_name":   u.FullName,
		"phone":       u.Phone,
		"location":    u.Location,
		"avatar":      u.Avatar,
		"preferences": u.Preferences,
		"addresses":   u.Addresses,
		"updated_at":  u.UpdatedAt,
	}
	if u.SellerInfo != nil {
		set["seller_info.business_name"] = u.SellerInfo.BusinessName
		set["seller_info.description"] = u.SellerInfo.Description
		set["seller_info.response_time"] = u.SellerInfo.ResponseTime
		set["seller_info.policies"] = u.SellerInfo.Policies
	}
	return s.updateByID(ctx, "save_profile", u.ID, set)
}

// SetActive flips is_active for the account with email and returns it.
func (s *Store) SetActive(ctx context.Context, email string, active bool) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.user.set_active")
	defer sp.Finish()

	var u domain.User
	err := s.users().FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

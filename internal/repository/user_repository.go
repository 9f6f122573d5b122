package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"threads-accounts/internal/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrSelfReference is returned when both ends of a follow edge are the same user.
	ErrSelfReference = errors.New("follow edge references a single user")
)

type UserRepository struct {
	client       *mongo.Client
	coll         *mongo.Collection
	transactions bool
}

// NewUserRepository binds to coll. When transactions is true both sides of a
// follow edge are written in one multi-document transaction; otherwise the
// second write is compensated on failure.
func NewUserRepository(client *mongo.Client, coll *mongo.Collection, transactions bool) *UserRepository {
	return &UserRepository{client: client, coll: coll, transactions: transactions}
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes failed: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = primitive.NilObjectID
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return insertError(err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("create user failed: unexpected inserted id %v", res.InsertedID)
	}
	user.ID = id
	return nil
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
	return r.findOne(ctx, filter, "email or username")
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, "username")
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "id")
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, by string) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by %s failed: %w", by, err)
	}
	return &user, nil
}

// ToggleFollow flips the follow edge currentID -> targetID and reports whether
// the edge exists afterwards. ErrNotFound is returned without any write when
// either user is missing. With transactions on, WithTransaction retries
// transient write conflicts from a concurrent toggle before giving up.
func (r *UserRepository) ToggleFollow(ctx context.Context, currentID, targetID primitive.ObjectID) (bool, error) {
	if currentID == targetID {
		return false, ErrSelfReference
	}
	if r.transactions {
		return r.toggleInTransaction(ctx, currentID, targetID)
	}
	return r.toggleWithCompensation(ctx, currentID, targetID)
}

func (r *UserRepository) toggleInTransaction(ctx context.Context, currentID, targetID primitive.ObjectID) (bool, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return false, fmt.Errorf("start mongo session failed: %w", err)
	}
	defer sess.EndSession(ctx)

	res, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		current, err := r.loadPair(sc, currentID, targetID)
		if err != nil {
			return false, err
		}
		follow := !current.IsFollowing(targetID)
		if err := r.updateSet(sc, targetID, "followers", currentID, follow); err != nil {
			return false, err
		}
		if err := r.updateSet(sc, currentID, "following", targetID, follow); err != nil {
			return false, err
		}
		return follow, nil
	})
	if err != nil {
		return false, err
	}
	followed, _ := res.(bool)
	return followed, nil
}

func (r *UserRepository) toggleWithCompensation(ctx context.Context, currentID, targetID primitive.ObjectID) (bool, error) {
	current, err := r.loadPair(ctx, currentID, targetID)
	if err != nil {
		return false, err
	}
	follow := !current.IsFollowing(targetID)

	if err := r.updateSet(ctx, targetID, "followers", currentID, follow); err != nil {
		return false, err
	}
	if err := r.updateSet(ctx, currentID, "following", targetID, follow); err != nil {
		if undoErr := r.updateSet(ctx, targetID, "followers", currentID, !follow); undoErr != nil {
			return false, errors.Join(err, fmt.Errorf("compensate followers of %s failed: %w", targetID.Hex(), undoErr))
		}
		return false, err
	}
	return follow, nil
}

// loadPair returns the acting user once both users are known to exist.
func (r *UserRepository) loadPair(ctx context.Context, currentID, targetID primitive.ObjectID) (*model.User, error) {
	target, err := r.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	current, err := r.FindByID(ctx, currentID)
	if err != nil {
		return nil, err
	}
	if target == nil || current == nil {
		return nil, ErrNotFound
	}
	return current, nil
}

func (r *UserRepository) updateSet(ctx context.Context, id primitive.ObjectID, field string, member primitive.ObjectID, add bool) error {
	res, err := r.coll.UpdateByID(ctx, id, setMembershipUpdate(field, member, add, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("update %s of user %s failed: %w", field, id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// setMembershipUpdate adds or removes member from the set-valued field.
// $addToSet keeps the field free of duplicates.
func setMembershipUpdate(field string, member primitive.ObjectID, add bool, now time.Time) bson.M {
	op := "$pull"
	if add {
		op = "$addToSet"
	}
	return bson.M{
		op:     bson.M{field: member},
		"$set": bson.M{"updatedAt": now},
	}
}

func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create user failed: %w", ErrDuplicateKey)
	}
	return fmt.Errorf("create user failed: %w", err)
}

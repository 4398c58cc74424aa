package users

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ripple/db"
	"ripple/models"
)

// Store is the user persistence surface. The Mongo implementation below is
// the real one; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	ListUsersByID(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)

	// AddFriendRequest records a directed pending request: requester's ID
	// lands in the recipient's friendRequests set, nowhere else.
	AddFriendRequest(ctx context.Context, requester, recipient primitive.ObjectID) error

	// ResolveFriendRequest clears the pending entry from both users and,
	// on accept, adds each to the other's friends set. Both documents are
	// updated in one transaction.
	ResolveFriendRequest(ctx context.Context, userID, friendID primitive.ObjectID, accepted bool) error
}

type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

func NewMongoStore(database *db.DB) *MongoStore {
	return &MongoStore{client: database.Client, users: database.Users}
}

func (s *MongoStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	if _, err := s.users.InsertOne(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return models.User{}, db.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *MongoStore) ListUsersByID(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find users by id: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

func (s *MongoStore) AddFriendRequest(ctx context.Context, requester, recipient primitive.ObjectID) error {
	if err := s.users.FindOne(ctx, bson.M{"_id": requester}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return db.ErrNotFound
		}
		return fmt.Errorf("find requester: %w", err)
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": recipient},
		bson.M{"$addToSet": bson.M{"friendRequests": requester}},
	)
	if err != nil {
		return fmt.Errorf("add friend request: %w", err)
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *MongoStore) ResolveFriendRequest(ctx context.Context, userID, friendID primitive.ObjectID, accepted bool) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		userUpdate := bson.M{"$pull": bson.M{"friendRequests": friendID}}
		friendUpdate := bson.M{"$pull": bson.M{"friendRequests": userID}}
		if accepted {
			userUpdate["$addToSet"] = bson.M{"friends": friendID}
			friendUpdate["$addToSet"] = bson.M{"friends": userID}
		}

		res, err := s.users.UpdateOne(sc, bson.M{"_id": userID}, userUpdate)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, db.ErrNotFound
		}

		res, err = s.users.UpdateOne(sc, bson.M{"_id": friendID}, friendUpdate)
		if err != nil {
			return nil, fmt.Errorf("update friend: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, db.ErrNotFound
		}
		return nil, nil
	})
	return err
}

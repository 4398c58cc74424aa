package posts

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"ripple/db"
	"ripple/models"
)

// Store is the post persistence surface. Like semantics are set membership:
// LikePost is idempotent per user.
type Store interface {
	// CreatePost inserts the post and appends its ID to the owner's posts
	// list in one transaction. Returns the post with its assigned ID.
	CreatePost(ctx context.Context, p models.Post) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, text, image string) error
	// DeletePost removes the post and pulls its ID from the owner's posts
	// list in one transaction.
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	LikePost(ctx context.Context, postID, userID primitive.ObjectID) error
	AddComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) error
}

type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
	posts  *mongo.Collection
}

func NewMongoStore(database *db.DB) *MongoStore {
	return &MongoStore{client: database.Client, users: database.Users, posts: database.Posts}
}

func (s *MongoStore) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	p.ID = primitive.NewObjectID()

	session, err := s.client.StartSession()
	if err != nil {
		return models.Post{}, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// Owner first, so a missing user aborts before the insert.
		res, err := s.users.UpdateOne(sc,
			bson.M{"_id": p.User},
			bson.M{"$push": bson.M{"posts": p.ID}},
		)
		if err != nil {
			return nil, fmt.Errorf("update owner: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, db.ErrNotFound
		}

		if _, err := s.posts.InsertOne(sc, p); err != nil {
			return nil, fmt.Errorf("insert post: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Post
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return out, nil
}

func (s *MongoStore) GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Post{}, db.ErrNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id primitive.ObjectID, text, image string) error {
	// Both fields are overwritten unconditionally; absent input fields
	// clear the stored values.
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"text": text, "image": image}},
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var p models.Post
		if err := s.posts.FindOne(sc, bson.M{"_id": id}).Decode(&p); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, db.ErrNotFound
			}
			return nil, fmt.Errorf("find post: %w", err)
		}

		if _, err := s.posts.DeleteOne(sc, bson.M{"_id": id}); err != nil {
			return nil, fmt.Errorf("delete post: %w", err)
		}

		if _, err := s.users.UpdateOne(sc,
			bson.M{"_id": p.User},
			bson.M{"$pull": bson.M{"posts": id}},
		); err != nil {
			return nil, fmt.Errorf("update owner: %w", err)
		}
		return nil, nil
	})
	return err
}

func (s *MongoStore) LikePost(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}},
	)
	if err != nil {
		return fmt.Errorf("like post: %w", err)
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (s *MongoStore) AddComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) error {
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": c}},
	)
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by stores when a lookup resolves nothing.
// Handlers map it to 404.
var ErrNotFound = errors.New("not found")

// DB holds the Mongo client and the two collections this service uses.
// It is created once in main and handed to the stores; nothing reaches
// for a package-level connection.
type DB struct {
	Client *mongo.Client
	Users  *mongo.Collection
	Posts  *mongo.Collection
}

func Connect(ctx context.Context, uri, name string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	database := client.Database(name)
	return &DB{
		Client: client,
		Users:  database.Collection("users"),
		Posts:  database.Collection("posts"),
	}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

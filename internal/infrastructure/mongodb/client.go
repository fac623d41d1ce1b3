// Package mongodb implements the repository contracts on MongoDB using the
// official v2 driver. Collection names and indexes are managed centrally in
// ensureIndexes; the query.Descriptor-to-bson translation lives in query.go
// and is the only place the query grammar touches storage.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	ColUsers     = "users"
	ColBootcamps = "bootcamps"
	ColCourses   = "courses"
	ColReviews   = "reviews"
)

// Client wraps one connected database handle shared by the repositories.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, dbName string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mc, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := mc.Ping(ctx, nil); err != nil {
		_ = mc.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	c := &Client{client: mc, db: mc.Database(dbName)}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = mc.Disconnect(context.Background())
		return nil, err
	}
	return c, nil
}

// Close disconnects from MongoDB.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (c *Client) col(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// ensureIndexes creates all required indexes. The unique review index is what
// enforces the one-review-per-user-per-bootcamp invariant; the unique email
// index backs registration.
func (c *Client) ensureIndexes(ctx context.Context) error {
	type idx struct {
		col    string
		keys   bson.D
		unique bool
	}

	indexes := []idx{
		{ColUsers, bson.D{{Key: "email", Value: 1}}, true},

		{ColBootcamps, bson.D{{Key: "slug", Value: 1}}, false},
		{ColBootcamps, bson.D{{Key: "user_id", Value: 1}}, false},
		{ColBootcamps, bson.D{{Key: "location", Value: "2dsphere"}}, false},
		{ColBootcamps, bson.D{{Key: "created_at", Value: -1}}, false},

		{ColCourses, bson.D{{Key: "bootcamp_id", Value: 1}}, false},

		{ColReviews, bson.D{{Key: "bootcamp_id", Value: 1}, {Key: "user_id", Value: 1}}, true},
	}

	for _, i := range indexes {
		model := mongo.IndexModel{Keys: i.keys}
		if i.unique {
			model.Options = options.Index().SetUnique(true)
		}
		if _, err := c.col(i.col).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("mongodb: create index on %s: %w", i.col, err)
		}
	}
	return nil
}

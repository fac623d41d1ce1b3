package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/devtrail/bootcamper/pkg/apperr"
)

// wrapError maps driver errors onto the domain taxonomy. Everything the
// services and handlers see from this package is an apperr value.
func wrapError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(notFoundMsg)
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Duplicate("resource already exists")
	}
	return apperr.Upstream("store unavailable", err)
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.D, notFoundMsg string) (*T, error) {
	var result T
	if err := col.FindOne(ctx, filter).Decode(&result); err != nil {
		return nil, wrapError(err, notFoundMsg)
	}
	return &result, nil
}

func findMany[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]*T, error) {
	cursor, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, wrapError(err, "")
	}
	defer cursor.Close(ctx)

	results := []*T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, apperr.Upstream("decode record", err)
		}
		results = append(results, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapError(err, "")
	}
	return results, nil
}

// findPage runs a descriptor-driven Find plus a CountDocuments over the same
// filter, so list endpoints can report pagination against the full match.
func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.D, opts options.Lister[options.FindOptions]) ([]*T, int64, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(err, "")
	}
	items, err := findMany[T](ctx, col, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func insertOne(ctx context.Context, col *mongo.Collection, doc any) error {
	_, err := col.InsertOne(ctx, doc)
	return wrapError(err, "")
}

func replaceByID(ctx context.Context, col *mongo.Collection, id string, doc any, notFoundMsg string) error {
	res, err := col.ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc)
	if err != nil {
		return wrapError(err, notFoundMsg)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

func updateByID(ctx context.Context, col *mongo.Collection, id string, update bson.D, notFoundMsg string) error {
	res, err := col.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return wrapError(err, notFoundMsg)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string, notFoundMsg string) error {
	res, err := col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return wrapError(err, notFoundMsg)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

func deleteMany(ctx context.Context, col *mongo.Collection, filter bson.D) error {
	_, err := col.DeleteMany(ctx, filter)
	return wrapError(err, "")
}

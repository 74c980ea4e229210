package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/complaint-service/internal/domain"
)

type categoryBucket struct {
	Category *string `bson:"_id"`
	Count    int64   `bson:"count"`
}

// countByCategory groups a collection by category, largest bucket first.
func countByCategory(ctx context.Context, col *mongo.Collection) ([]domain.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var buckets []categoryBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	counts := make([]domain.CategoryCount, 0, len(buckets))
	for _, b := range buckets {
		var category string
		if b.Category != nil {
			category = *b.Category
		}
		counts = append(counts, domain.CategoryCount{Category: category, Count: b.Count})
	}
	return counts, nil
}

type averageResult struct {
	Avg *float64 `bson:"avg"`
}

// singleAverage runs a pipeline ending in a single {_id: null, avg} group.
// An empty collection averages to 0.
func singleAverage(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) (float64, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	var results []averageResult
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 || results[0].Avg == nil {
		return 0, nil
	}
	return *results[0].Avg, nil
}

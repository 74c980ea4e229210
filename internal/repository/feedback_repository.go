package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const feedbackCollection = "feedback"

// FeedbackFilter narrows list and count queries. Zero fields are ignored.
type FeedbackFilter struct {
	OwnerID string
}

// FeedbackRepository encapsulates feedback persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
	UpdateStatus(ctx context.Context, id string, status domain.Optional[domain.FeedbackStatus], at time.Time) (*domain.Feedback, error)
	Count(ctx context.Context, filter FeedbackFilter) (int64, error)
	CountByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	CountByRating(ctx context.Context) ([]domain.RatingCount, error)
	AverageRating(ctx context.Context) (float64, error)
}

type feedbackDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Rating    int                `bson:"rating"`
	Category  string             `bson:"category"`
	Comments  string             `bson:"comments"`
	Status    string             `bson:"status"`
	UserID    any                `bson:"user_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *feedbackDocument) toDomain() domain.Feedback {
	return domain.Feedback{
		ID:        d.ID.Hex(),
		Rating:    d.Rating,
		Category:  d.Category,
		Comments:  d.Comments,
		Status:    domain.FeedbackStatus(d.Status),
		UserID:    ownerString(d.UserID),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type feedbackRepository struct {
	col *mongo.Collection
}

// NewFeedbackRepository returns a MongoDB-backed implementation.
func NewFeedbackRepository(db *mongo.Database) FeedbackRepository {
	return &feedbackRepository{col: db.Collection(feedbackCollection)}
}

// EnsureFeedbackIndexes creates the owner listing index.
func EnsureFeedbackIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(feedbackCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	doc := feedbackDocument{
		Rating:    feedback.Rating,
		Category:  feedback.Category,
		Comments:  feedback.Comments,
		Status:    string(feedback.Status),
		UserID:    feedback.UserID,
		CreatedAt: feedback.CreatedAt,
		UpdatedAt: feedback.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		feedback.ID = oid.Hex()
	}
	return nil
}

func (r *feedbackRepository) List(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, feedbackQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []feedbackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	items := make([]domain.Feedback, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].toDomain())
	}
	return items, nil
}

func (r *feedbackRepository) UpdateStatus(ctx context.Context, id string, status domain.Optional[domain.FeedbackStatus], at time.Time) (*domain.Feedback, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set := bson.M{"updated_at": at}
	if status.Set {
		set["status"] = string(status.Value)
	}
	update := bson.M{"$set": set}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc feedbackDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	feedback := doc.toDomain()
	return &feedback, nil
}

func (r *feedbackRepository) Count(ctx context.Context, filter FeedbackFilter) (int64, error) {
	return r.col.CountDocuments(ctx, feedbackQuery(filter))
}

func (r *feedbackRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	return countByCategory(ctx, r.col)
}

type ratingBucket struct {
	Rating int   `bson:"_id"`
	Count  int64 `bson:"count"`
}

func (r *feedbackRepository) CountByRating(ctx context.Context) ([]domain.RatingCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"rating": bson.M{"$type": "number"}}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var buckets []ratingBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	counts := make([]domain.RatingCount, 0, len(buckets))
	for _, b := range buckets {
		counts = append(counts, domain.RatingCount{Rating: b.Rating, Count: b.Count})
	}
	return counts, nil
}

func (r *feedbackRepository) AverageRating(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$rating"}}}},
	}
	return singleAverage(ctx, r.col, pipeline)
}

func feedbackQuery(filter FeedbackFilter) bson.M {
	if filter.OwnerID == "" {
		return bson.M{}
	}
	return ownerQuery(filter.OwnerID)
}

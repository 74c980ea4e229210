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

const complaintsCollection = "complaints"

// ComplaintFilter narrows list and count queries. Zero fields are ignored.
type ComplaintFilter struct {
	OwnerID    string
	Status     domain.ComplaintStatus
	Priority   domain.ComplaintPriority
	AssignedTo string
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	Update(ctx context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter ComplaintFilter) (int64, error)
	CountByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	AverageResolutionHours(ctx context.Context) (float64, error)
}

type complaintDocument struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty"`
	Title               string             `bson:"title"`
	Description         string             `bson:"description"`
	Category            string             `bson:"category"`
	Priority            string             `bson:"priority"`
	Status              string             `bson:"status"`
	UserID              any                `bson:"user_id"`
	Anonymous           bool               `bson:"anonymous"`
	AssignedTo          *string            `bson:"assigned_to"`
	Department          *string            `bson:"department"`
	Progress            int                `bson:"progress"`
	EstimatedResolution *string            `bson:"estimated_resolution,omitempty"`
	ResolvedAt          *time.Time         `bson:"resolved_at,omitempty"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

func (d *complaintDocument) toDomain() domain.Complaint {
	return domain.Complaint{
		ID:                  d.ID.Hex(),
		Title:               d.Title,
		Description:         d.Description,
		Category:            d.Category,
		Priority:            domain.ComplaintPriority(d.Priority),
		Status:              domain.ComplaintStatus(d.Status),
		UserID:              ownerString(d.UserID),
		Anonymous:           d.Anonymous,
		AssignedTo:          d.AssignedTo,
		Department:          d.Department,
		Progress:            d.Progress,
		EstimatedResolution: d.EstimatedResolution,
		ResolvedAt:          d.ResolvedAt,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

type complaintRepository struct {
	col *mongo.Collection
}

// NewComplaintRepository returns a MongoDB-backed implementation.
func NewComplaintRepository(db *mongo.Database) ComplaintRepository {
	return &complaintRepository{col: db.Collection(complaintsCollection)}
}

// EnsureComplaintIndexes creates indexes used by owner listings and counters.
func EnsureComplaintIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(complaintsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	doc := complaintDocument{
		Title:               complaint.Title,
		Description:         complaint.Description,
		Category:            complaint.Category,
		Priority:            string(complaint.Priority),
		Status:              string(complaint.Status),
		UserID:              complaint.UserID,
		Anonymous:           complaint.Anonymous,
		AssignedTo:          complaint.AssignedTo,
		Department:          complaint.Department,
		Progress:            complaint.Progress,
		EstimatedResolution: complaint.EstimatedResolution,
		CreatedAt:           complaint.CreatedAt,
		UpdatedAt:           complaint.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		complaint.ID = oid.Hex()
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc complaintDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	complaint := doc.toDomain()
	return &complaint, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, complaintQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []complaintDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	complaints := make([]domain.Complaint, 0, len(docs))
	for i := range docs {
		complaints = append(complaints, docs[i].toDomain())
	}
	return complaints, nil
}

func (r *complaintRepository) Update(ctx context.Context, id string, patch domain.ComplaintPatch) (*domain.Complaint, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc complaintDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": complaintSet(patch)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	complaint := doc.toDomain()
	return &complaint, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *complaintRepository) Count(ctx context.Context, filter ComplaintFilter) (int64, error) {
	return r.col.CountDocuments(ctx, complaintQuery(filter))
}

func (r *complaintRepository) CountByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	return countByCategory(ctx, r.col)
}

func (r *complaintRepository) AverageResolutionHours(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":      string(domain.ComplaintStatusResolved),
			"resolved_at": bson.M{"$type": "date"},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": bson.M{"$subtract": bson.A{"$resolved_at", "$created_at"}}},
		}}},
	}
	avgMillis, err := singleAverage(ctx, r.col, pipeline)
	if err != nil {
		return 0, err
	}
	return avgMillis / float64(time.Hour/time.Millisecond), nil
}

// complaintQuery builds the find filter. The owner clause matches both the
// string and ObjectID forms of the owner reference.
func complaintQuery(filter ComplaintFilter) bson.M {
	query := bson.M{}
	if filter.OwnerID != "" {
		query = ownerQuery(filter.OwnerID)
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		query["priority"] = string(filter.Priority)
	}
	if filter.AssignedTo != "" {
		query["assigned_to"] = filter.AssignedTo
	}
	return query
}

func ownerQuery(ownerID string) bson.M {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return bson.M{"user_id": ownerID}
	}
	return bson.M{"$or": bson.A{
		bson.M{"user_id": ownerID},
		bson.M{"user_id": oid},
	}}
}

// complaintSet translates a patch into a $set document. updated_at is always
// written.
func complaintSet(patch domain.ComplaintPatch) bson.M {
	set := bson.M{"updated_at": patch.UpdatedAt}
	if patch.Status.Set {
		set["status"] = string(patch.Status.Value)
	}
	if patch.AssignedTo.Set {
		set["assigned_to"] = patch.AssignedTo.Value
	}
	if patch.Department.Set {
		set["department"] = patch.Department.Value
	}
	if patch.Priority.Set {
		set["priority"] = string(patch.Priority.Value)
	}
	if patch.Progress.Set {
		set["progress"] = patch.Progress.Value
	}
	if patch.EstimatedResolution.Set {
		set["estimated_resolution"] = patch.EstimatedResolution.Value
	}
	if patch.ResolvedAt.Set {
		set["resolved_at"] = patch.ResolvedAt.Value
	}
	return set
}

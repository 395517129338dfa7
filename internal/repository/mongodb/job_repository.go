package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/alumnilink/backend/internal/domain/models"
)

// JobRepository is the job board store contract.
type JobRepository interface {
	CreateJob(ctx context.Context, job *models.Job) (primitive.ObjectID, error)
	GetJobByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error)
	UpdateJob(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteJob(ctx context.Context, id primitive.ObjectID) error
}

// MongoJobRepository implements JobRepository on MongoDB.
type MongoJobRepository struct {
	db *mongo.Database
}

// NewJobRepository builds a MongoDB backed job board store.
func NewJobRepository(db *mongo.Database) *MongoJobRepository {
	return &MongoJobRepository{db: db}
}

func (r *MongoJobRepository) jobs() *mongo.Collection {
	return r.db.Collection("jobs")
}

func (r *MongoJobRepository) CreateJob(ctx context.Context, job *models.Job) (primitive.ObjectID, error) {
	now := time.Now()
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	if job.Status == "" {
		job.Status = models.JobStatusOpen
	}
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := r.jobs().InsertOne(ctx, job); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert job: %w", err)
	}
	return job.ID, nil
}

func (r *MongoJobRepository) GetJobByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var job models.Job
	err := r.jobs().FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job %s: %w", id.Hex(), err)
	}
	return &job, nil
}

// ListJobs returns postings, newest first. An empty status returns all.
func (r *MongoJobRepository) ListJobs(ctx context.Context, status models.JobStatus) ([]models.Job, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.jobs().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	var jobs []models.Job
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return jobs, nil
}

func (r *MongoJobRepository) UpdateJob(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	res, err := r.jobs().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update job %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoJobRepository) DeleteJob(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.jobs().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

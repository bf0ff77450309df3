package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"thalia/internal/model"
)

// AssessmentRepo stores completed MRS assessment reports.
type AssessmentRepo interface {
	Create(ctx context.Context, report *model.AssessmentReport) error
	GetBySession(ctx context.Context, sessionID string) ([]*model.AssessmentReport, error)
	GetByUser(ctx context.Context, userID string) ([]*model.AssessmentReport, error)
}

type assessmentRepo struct {
	collection *mongo.Collection
}

// NewAssessmentRepo creates an assessment repository.
func NewAssessmentRepo(db *mongo.Database) AssessmentRepo {
	return &assessmentRepo{collection: db.Collection("assessments")}
}

func (r *assessmentRepo) Create(ctx context.Context, report *model.AssessmentReport) error {
	if report.CompletedAt.IsZero() {
		report.CompletedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		report.ID = oid.Hex()
	}
	return nil
}

func (r *assessmentRepo) GetBySession(ctx context.Context, sessionID string) ([]*model.AssessmentReport, error) {
	return r.find(ctx, bson.M{"session_id": sessionID})
}

func (r *assessmentRepo) GetByUser(ctx context.Context, userID string) ([]*model.AssessmentReport, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *assessmentRepo) find(ctx context.Context, filter bson.M) ([]*model.AssessmentReport, error) {
	opts := options.Find().SetSort(bson.M{"completed_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []*model.AssessmentReport
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

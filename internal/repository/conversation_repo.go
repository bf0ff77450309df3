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

// ConversationRepo stores per-session chat history.
type ConversationRepo interface {
	Append(ctx context.Context, msg *model.ConversationMessage) error
	GetBySession(ctx context.Context, sessionID string) ([]*model.ConversationMessage, error)
}

type conversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo creates a conversation repository.
func NewConversationRepo(db *mongo.Database) ConversationRepo {
	return &conversationRepo{collection: db.Collection("conversations")}
}

func (r *conversationRepo) Append(ctx context.Context, msg *model.ConversationMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (r *conversationRepo) GetBySession(ctx context.Context, sessionID string) ([]*model.ConversationMessage, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*model.ConversationMessage
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

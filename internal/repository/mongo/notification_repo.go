package mongo

import (
	"context"
	"errors"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const notificationCollectionName = "notifications"

// mongoNotificationRepository implements repository.NotificationRepository
type mongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new Notification repository backed by MongoDB.
func NewMongoNotificationRepository(db *mongo.Database) repository.NotificationRepository {
	return &mongoNotificationRepository{
		collection: db.Collection(notificationCollectionName),
	}
}

// Create inserts a new notification document.
func (r *mongoNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if notification.UserID == "" || notification.Type == "" {
		return errors.New("notification requires userId and type")
	}

	notification.ID = primitive.NewObjectID()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetForUser retrieves the newest notifications addressed to the user
// directly or broadcast to every user, newest first.
func (r *mongoNotificationRepository) GetForUser(ctx context.Context, userID string, limit int64) ([]domain.Notification, error) {
	var notifications []domain.Notification
	filter := bson.M{"userId": bson.M{"$in": []string{userID, domain.BroadcastUserID}}}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead flags one notification as read. The userId filter keeps users
// from flipping each other's flags (broadcasts included, since those are
// shared documents a direct match still addresses).
func (r *mongoNotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID, userID string) error {
	filter := bson.M{
		"_id":    id,
		"userId": bson.M{"$in": []string{userID, domain.BroadcastUserID}},
	}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification visible to the user as read.
func (r *mongoNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	filter := bson.M{
		"userId": bson.M{"$in": []string{userID, domain.BroadcastUserID}},
		"read":   false,
	}
	update := bson.M{"$set": bson.M{"read": true}}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsureNotificationIndexes creates necessary indexes for the notifications collection.
func EnsureNotificationIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Feed query: by recipient, newest first
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

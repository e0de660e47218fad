package mongo

import (
	"context"
	"errors"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// CreateIfAbsent inserts the session unless one with the same deterministic
// id already exists. Two callers materializing the same week concurrently
// race on the insert; the loser gets a duplicate-key error, which is the
// expected outcome, not a failure. Existing sessions are never overwritten,
// so bookingCount and status survive repeated materialization.
func (r *mongoSessionRepository) CreateIfAbsent(ctx context.Context, session *domain.Session) (bool, error) {
	if session.ID == "" {
		return false, errors.New("session id is required")
	}
	session.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByID retrieves a session by its deterministic id.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetByDateRange retrieves sessions whose date falls within [fromDate,
// toDate] inclusive, ordered by date then start time. Dates are ISO strings
// so lexicographic comparison matches chronological order.
func (r *mongoSessionRepository) GetByDateRange(ctx context.Context, fromDate, toDate string) ([]domain.Session, error) {
	var sessions []domain.Session
	filter := bson.M{"date": bson.M{"$gte": fromDate, "$lte": toDate}}
	findOptions := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "startTime", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetScheduledByDate retrieves the still-scheduled sessions on one date.
// Used by the daily reminder job.
func (r *mongoSessionRepository) GetScheduledByDate(ctx context.Context, date string) ([]domain.Session, error) {
	var sessions []domain.Session
	filter := bson.M{"date": date, "status": domain.SessionScheduled}
	findOptions := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Cancel marks the session cancelled with an optional note. Once cancelled,
// bookingCount is frozen (the ledger rejects further reservations) and the
// status is terminal for booking purposes.
func (r *mongoSessionRepository) Cancel(ctx context.Context, id string, cancelNote string) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"status":     domain.SessionCancelled,
		"cancelNote": cancelNote,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateDetails edits the session's display fields. These are plain field
// writes outside the capacity invariant; bookingCount and maxCapacity are
// deliberately untouchable here.
func (r *mongoSessionRepository) UpdateDetails(ctx context.Context, id, startTime, endTime, location string) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"startTime": startTime,
		"endTime":   endTime,
		"location":  location,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes for the sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Week view queries by date range
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index(),
		},
		{
			// Reminder job queries by date + status
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "slotId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

package mongo

import (
	"context"
	"errors"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bookingCollectionName = "bookings"

// mongoBookingRepository implements repository.BookingRepository. It is
// read-mostly: booking creation and status flips happen exclusively inside
// the ledger's transaction (see ledger.go), never through this repository.
type mongoBookingRepository struct {
	collection *mongo.Collection
}

// NewMongoBookingRepository creates a new Booking repository backed by MongoDB.
func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &mongoBookingRepository{
		collection: db.Collection(bookingCollectionName),
	}
}

// GetByID retrieves a booking by its deterministic id.
func (r *mongoBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var booking domain.Booking
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// GetByUserID retrieves all bookings (confirmed and cancelled) for a member,
// newest session first. History display relies on the snapshotted session
// fields, so cancelled bookings stay useful.
func (r *mongoBookingRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{
		{Key: "sessionDate", Value: -1},
		{Key: "sessionStartTime", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// GetConfirmedBySessionID retrieves the confirmed bookings on a session.
// Used for the coach's attendance view and the session-cancelled fan-out.
func (r *mongoBookingRepository) GetConfirmedBySessionID(ctx context.Context, sessionID string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	filter := bson.M{"sessionId": sessionID, "status": domain.BookingConfirmed}
	findOptions := options.Find().SetSort(bson.D{{Key: "userName", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// SetCheckedIn toggles attendance on a confirmed booking. A coach-only field
// write, outside the capacity invariant.
func (r *mongoBookingRepository) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	filter := bson.M{"_id": id, "status": domain.BookingConfirmed}
	update := bson.M{"$set": bson.M{"checkedIn": checkedIn}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureBookingIndexes creates necessary indexes for the bookings collection.
func EnsureBookingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Member booking history
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "sessionDate", Value: -1}},
			Options: options.Index(),
		},
		{
			// Attendance view and session-cancelled fan-out
			Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

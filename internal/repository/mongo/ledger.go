package mongo

import (
	"context"
	"errors"
	"kamenko/gym-app/internal/domain"
	"kamenko/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// mongoBookingLedger implements repository.BookingLedger on top of MongoDB
// multi-document transactions. Each operation reads the session inside the
// transaction, applies the domain capacity transition, and writes the
// booking and the updated bookingCount together: both land or neither does.
//
// Concurrency control is optimistic. Two reservations racing on the same
// session conflict on the session document write; the driver's
// WithTransaction retries the losing callback against a fresh snapshot, so
// the capacity check always runs against the count the winner committed.
// Overbooking is therefore impossible regardless of the degree of
// parallelism, and terminal preconditions (cancelled, full) are re-observed
// on every retry.
type mongoBookingLedger struct {
	client   *mongo.Client
	sessions *mongo.Collection
	bookings *mongo.Collection
}

// NewMongoBookingLedger creates the booking ledger. It needs the client (to
// start transaction sessions) in addition to the database handle.
func NewMongoBookingLedger(client *mongo.Client, db *mongo.Database) repository.BookingLedger {
	return &mongoBookingLedger{
		client:   client,
		sessions: db.Collection(sessionCollectionName),
		bookings: db.Collection(bookingCollectionName),
	}
}

// transactionOptions returns the options used for ledger transactions.
// Snapshot reads + majority writes give the serializable view of
// bookingCount the capacity check depends on.
func transactionOptions() *options.TransactionOptions {
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
}

// Reserve books one spot on the session for the user, atomically with the
// bookingCount increment.
func (l *mongoBookingLedger) Reserve(ctx context.Context, sessionID, userID, userName string) (*domain.Booking, error) {
	txnSession, err := l.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer txnSession.EndSession(ctx)

	result, err := txnSession.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// 1. Fresh read of the session inside the transaction
		var classSession domain.Session
		if err := l.sessions.FindOne(sc, bson.M{"_id": sessionID}).Decode(&classSession); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, repository.ErrNotFound
			}
			return nil, err
		}

		// 2. Terminal preconditions + increment (domain owns the invariant)
		if err := classSession.Reserve(); err != nil {
			return nil, err
		}

		// 3. Write the booking. The deterministic _id means re-booking after
		// a cancellation overwrites the same document, so upsert semantics
		// are exactly right: at most one booking per (user, session), ever.
		booking := domain.NewBooking(userID, userName, &classSession)
		replaceOpts := options.Replace().SetUpsert(true)
		if _, err := l.bookings.ReplaceOne(sc, bson.M{"_id": booking.ID}, booking, replaceOpts); err != nil {
			return nil, err
		}

		// 4. Persist the incremented count computed from the in-transaction
		// read. $set of the computed value (not a blind $inc) keeps the
		// write tied to the capacity check that authorized it.
		update := bson.M{"$set": bson.M{"bookingCount": classSession.BookingCount}}
		if _, err := l.sessions.UpdateOne(sc, bson.M{"_id": classSession.ID}, update); err != nil {
			return nil, err
		}

		return booking, nil
	}, transactionOptions())
	if err != nil {
		return nil, err
	}

	return result.(*domain.Booking), nil
}

// releaseResult carries the at-capacity flag out of the transaction closure.
type releaseResult struct {
	wasAtCapacity bool
}

// Release cancels the booking and decrements the session's bookingCount,
// atomically. The wasAtCapacity flag is read inside the same transaction as
// the decrement, so it can never reflect a stale count.
func (l *mongoBookingLedger) Release(ctx context.Context, bookingID string) (bool, error) {
	txnSession, err := l.client.StartSession()
	if err != nil {
		return false, err
	}
	defer txnSession.EndSession(ctx)

	result, err := txnSession.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// 1. Fresh read of the booking
		var booking domain.Booking
		if err := l.bookings.FindOne(sc, bson.M{"_id": bookingID}).Decode(&booking); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, repository.ErrNotFound
			}
			return nil, err
		}

		// 2. Double-release is a no-op: the count already reflects this
		// booking's cancellation, decrementing again would drift it.
		if booking.Status == domain.BookingCancelled {
			return releaseResult{wasAtCapacity: false}, nil
		}

		// 3. Fresh read of the session
		var classSession domain.Session
		if err := l.sessions.FindOne(sc, bson.M{"_id": booking.SessionID}).Decode(&classSession); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, repository.ErrNotFound
			}
			return nil, err
		}

		// 4. Capacity transition: flag before mutation, decrement clamped at 0
		wasAtCapacity := classSession.Release()

		// 5. Cancel the booking (kept for history, never deleted) and
		// persist the decremented count, together.
		bookingUpdate := bson.M{"$set": bson.M{"status": domain.BookingCancelled}}
		if _, err := l.bookings.UpdateOne(sc, bson.M{"_id": booking.ID}, bookingUpdate); err != nil {
			return nil, err
		}
		sessionUpdate := bson.M{"$set": bson.M{"bookingCount": classSession.BookingCount}}
		if _, err := l.sessions.UpdateOne(sc, bson.M{"_id": classSession.ID}, sessionUpdate); err != nil {
			return nil, err
		}

		return releaseResult{wasAtCapacity: wasAtCapacity}, nil
	}, transactionOptions())
	if err != nil {
		return false, err
	}

	return result.(releaseResult).wasAtCapacity, nil
}

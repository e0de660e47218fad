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

const slotCollectionName = "slots"

// mongoSlotRepository implements repository.SlotRepository
type mongoSlotRepository struct {
	collection *mongo.Collection
}

// NewMongoSlotRepository creates a new Slot repository backed by MongoDB.
func NewMongoSlotRepository(db *mongo.Database) repository.SlotRepository {
	return &mongoSlotRepository{
		collection: db.Collection(slotCollectionName),
	}
}

// Create inserts a new slot template. The caller (service layer) assigns the
// UUID id since it becomes part of derived session ids.
func (r *mongoSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	if slot.ID == "" {
		return errors.New("slot id is required")
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, slot)
	return err
}

// GetByID retrieves a slot by its id.
func (r *mongoSlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	var slot domain.Slot
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// GetAll retrieves every slot template (active and inactive), ordered by day
// of week then start time so the schedule view renders naturally.
func (r *mongoSlotRepository) GetAll(ctx context.Context) ([]domain.Slot, error) {
	var slots []domain.Slot
	findOptions := options.Find().SetSort(bson.D{
		{Key: "dayOfWeek", Value: 1},
		{Key: "startTime", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

// Update modifies an existing slot template. Edits only affect sessions
// materialized after the change; existing sessions keep their copied fields.
func (r *mongoSlotRepository) Update(ctx context.Context, slot *domain.Slot) error {
	if slot.ID == "" {
		return errors.New("slot ID is required for update")
	}

	filter := bson.M{"_id": slot.ID}
	update := bson.M{"$set": bson.M{
		"dayOfWeek":   slot.DayOfWeek,
		"startTime":   slot.StartTime,
		"endTime":     slot.EndTime,
		"location":    slot.Location,
		"maxCapacity": slot.MaxCapacity,
		"active":      slot.Active,
		"updatedAt":   time.Now().UTC(),
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

// SetActive activates or deactivates a slot. Slots are never deleted.
func (r *mongoSlotRepository) SetActive(ctx context.Context, id string, active bool) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{
		"active":    active,
		"updatedAt": time.Now().UTC(),
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

// EnsureSlotIndexes creates necessary indexes for the slots collection.
func EnsureSlotIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The materializer only cares about active slots
			Keys:    bson.D{{Key: "active", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

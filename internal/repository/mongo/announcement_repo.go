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

const announcementCollectionName = "announcements"

// There is exactly one announcement at a time; it lives under a fixed id.
const currentAnnouncementID = "current"

// mongoAnnouncementRepository implements repository.AnnouncementRepository
type mongoAnnouncementRepository struct {
	collection *mongo.Collection
}

// NewMongoAnnouncementRepository creates a new Announcement repository backed by MongoDB.
func NewMongoAnnouncementRepository(db *mongo.Database) repository.AnnouncementRepository {
	return &mongoAnnouncementRepository{
		collection: db.Collection(announcementCollectionName),
	}
}

// announcementDoc wraps the domain announcement with the fixed _id.
type announcementDoc struct {
	ID                  string `bson:"_id"`
	domain.Announcement `bson:",inline"`
}

// Get retrieves the current announcement, or ErrNotFound if none was ever posted.
func (r *mongoAnnouncementRepository) Get(ctx context.Context) (*domain.Announcement, error) {
	var doc announcementDoc
	filter := bson.M{"_id": currentAnnouncementID}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.Announcement, nil
}

// Set replaces the current announcement (upsert on the fixed id).
func (r *mongoAnnouncementRepository) Set(ctx context.Context, announcement *domain.Announcement) error {
	doc := announcementDoc{
		ID:           currentAnnouncementID,
		Announcement: *announcement,
	}
	replaceOpts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": currentAnnouncementID}, doc, replaceOpts)
	return err
}

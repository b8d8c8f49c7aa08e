package mongo

import (
	"context"
	"errors"
	"time"

	"family-med-calendar/internal/domain/profiles"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfilesRepo guarda el nombre para mostrar por dispositivo en
// `device_profiles` (_id = device id).
type ProfilesRepo struct {
	coll *mongo.Collection
}

func NewProfilesRepo(db *mongo.Database) *ProfilesRepo {
	return &ProfilesRepo{coll: db.Collection("device_profiles")}
}

type profileDoc struct {
	DisplayName string    `bson:"displayName"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (r *ProfilesRepo) Get(ctx context.Context, deviceID string) (profiles.Profile, error) {
	var doc profileDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": deviceID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return profiles.Profile{DeviceID: deviceID}, nil
		}
		return profiles.Profile{}, err
	}

	return profiles.Profile{DeviceID: deviceID, DisplayName: doc.DisplayName}, nil
}

func (r *ProfilesRepo) Save(ctx context.Context, p profiles.Profile) error {
	_, err := r.coll.UpdateByID(ctx, p.DeviceID,
		bson.M{"$set": profileDoc{
			DisplayName: p.DisplayName,
			UpdatedAt:   time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

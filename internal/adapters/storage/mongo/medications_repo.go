package mongo

import (
	"context"
	"errors"
	"time"

	"family-med-calendar/internal/domain/medications"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const medicationsDocID = "definitions"

// MedicationsRepo guarda el listado completo en un único documento de
// la colección `medications` (se reescribe entero en cada cambio).
type MedicationsRepo struct {
	coll *mongo.Collection
}

func NewMedicationsRepo(db *mongo.Database) *MedicationsRepo {
	return &MedicationsRepo{coll: db.Collection("medications")}
}

type defDoc struct {
	ID        string `bson:"id"`
	Name      string `bson:"name"`
	Dosage    string `bson:"dosage"`
	TimeSlot  string `bson:"timeSlot"`
	Frequency string `bson:"frequencyRule"`
}

type medicationsDoc struct {
	Definitions []defDoc  `bson:"definitions"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (r *MedicationsRepo) LoadAll(ctx context.Context) ([]medications.Definition, error) {
	var doc medicationsDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": medicationsDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []medications.Definition{}, nil
		}
		return nil, err
	}

	out := make([]medications.Definition, 0, len(doc.Definitions))
	for _, d := range doc.Definitions {
		out = append(out, medications.Definition{
			ID:        d.ID,
			Name:      d.Name,
			Dosage:    d.Dosage,
			TimeSlot:  d.TimeSlot,
			Frequency: d.Frequency,
		})
	}
	return out, nil
}

func (r *MedicationsRepo) ReplaceAll(ctx context.Context, defs []medications.Definition) error {
	docs := make([]defDoc, 0, len(defs))
	for _, d := range defs {
		docs = append(docs, defDoc{
			ID:        d.ID,
			Name:      d.Name,
			Dosage:    d.Dosage,
			TimeSlot:  d.TimeSlot,
			Frequency: d.Frequency,
		})
	}

	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": medicationsDocID},
		medicationsDoc{Definitions: docs, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	return err
}

package mongo

import (
	"context"
	"errors"
	"sync"

	"family-med-calendar/internal/domain/dayrecords"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DayRecordsRepo guarda un documento por fecha en `day_records`
// (_id = YYYY-MM-DD). Merge es un $set con upsert: solo los campos del
// patch más el string de la fecha; el resto del documento no se toca.
// Watch es un change stream filtrado por esa _id.
type DayRecordsRepo struct {
	coll *mongo.Collection
}

func NewDayRecordsRepo(db *mongo.Database) *DayRecordsRepo {
	return &DayRecordsRepo{coll: db.Collection("day_records")}
}

type dayDoc struct {
	Date          string               `bson:"date"`
	Status        map[string]bool      `bson:"medicationStatus"`
	Notes         []dayrecords.Note    `bson:"notes"`
	BloodPressure []dayrecords.Reading `bson:"bloodPressure"`
}

func (d dayDoc) toRecord(date string) dayrecords.Record {
	return dayrecords.Record{
		Date:          d.Date,
		Status:        d.Status,
		Notes:         d.Notes,
		BloodPressure: d.BloodPressure,
	}.Normalize(date)
}

func (r *DayRecordsRepo) Get(ctx context.Context, date string) (dayrecords.Record, error) {
	var doc dayDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": date}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dayrecords.Empty(date), nil
		}
		return dayrecords.Record{}, err
	}
	return doc.toRecord(date), nil
}

func (r *DayRecordsRepo) Merge(ctx context.Context, date string, p dayrecords.Patch) error {
	if p.Empty() {
		return nil
	}

	set := bson.M{"date": date}
	if p.Status != nil {
		set["medicationStatus"] = *p.Status
	}
	if p.Notes != nil {
		set["notes"] = *p.Notes
	}
	if p.BloodPressure != nil {
		set["bloodPressure"] = *p.BloodPressure
	}

	_, err := r.coll.UpdateByID(ctx, date,
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *DayRecordsRepo) Watch(ctx context.Context, date string) (dayrecords.Subscription, error) {
	// Contexto propio: la vida de la suscripción la gobierna Cancel,
	// no el request que la abrió.
	sctx, cancel := context.WithCancel(context.Background())

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "documentKey._id", Value: date},
		}}},
	}

	cs, err := r.coll.Watch(sctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	// Snapshot inicial DESPUÉS de abrir el stream: una escritura que
	// caiga entre ambos pasos llega igual (por el snapshot o por el
	// evento; un duplicado es inocuo, los snapshots son completos).
	initial, err := r.Get(ctx, date)
	if err != nil {
		cancel()
		_ = cs.Close(context.Background())
		return nil, err
	}

	sub := &streamSub{
		ch:     make(chan dayrecords.Record, 16),
		cancel: cancel,
	}
	sub.ch <- initial

	go sub.run(sctx, cs, date)
	return sub, nil
}

type streamSub struct {
	ch     chan dayrecords.Record
	cancel context.CancelFunc
	once   sync.Once
}

func (s *streamSub) Updates() <-chan dayrecords.Record {
	return s.ch
}

func (s *streamSub) Cancel() {
	s.once.Do(s.cancel)
}

func (s *streamSub) run(ctx context.Context, cs *mongo.ChangeStream, date string) {
	defer close(s.ch)
	defer func() { _ = cs.Close(context.Background()) }()

	for cs.Next(ctx) {
		var ev struct {
			FullDocument dayDoc `bson:"fullDocument"`
		}
		if err := cs.Decode(&ev); err != nil {
			continue
		}

		select {
		case s.ch <- ev.FullDocument.toRecord(date):
		case <-ctx.Done():
			return
		}
	}
}

package enquiry

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	contactsCollection = "contactEnquiries"
	tripsCollection    = "tripEnquiries"
)

type contactDoc struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Contact `bson:",inline"`
}

type tripDoc struct {
	ID   bson.ObjectID `bson:"_id,omitempty"`
	Trip `bson:",inline"`
}

// MongoStore implements Store on two MongoDB collections.
type MongoStore struct {
	contacts *mongo.Collection
	trips    *mongo.Collection
}

// NewMongoStore creates an enquiry store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		contacts: db.Collection(contactsCollection),
		trips:    db.Collection(tripsCollection),
	}
}

// EnsureIndexes creates the per-driver listing indexes. Call once on startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	model := []mongo.IndexModel{
		{Keys: bson.D{{Key: "driverId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := s.contacts.Indexes().CreateMany(ctx, model); err != nil {
		return err
	}
	_, err := s.trips.Indexes().CreateMany(ctx, model)
	return err
}

func (s *MongoStore) InsertContact(ctx context.Context, c *Contact) error {
	c.CreatedAt = time.Now().UTC()

	res, err := s.contacts.InsertOne(ctx, contactDoc{Contact: *c})
	if err != nil {
		return errors.Join(ErrFailedToStoreRecord, err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) ListContacts(ctx context.Context, driverID string) ([]Contact, error) {
	cur, err := s.contacts.Find(ctx, bson.M{"driverId": driverID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	defer cur.Close(ctx)

	var contacts []Contact
	for cur.Next(ctx) {
		var doc contactDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Join(ErrFailedToLoadRecord, err)
		}
		c := doc.Contact
		c.ID = doc.ID.Hex()
		contacts = append(contacts, c)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	return contacts, nil
}

func (s *MongoStore) FindContact(ctx context.Context, id string) (*Contact, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrEnquiryNotFound
	}

	var doc contactDoc
	if err := s.contacts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEnquiryNotFound
		}
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	c := doc.Contact
	c.ID = doc.ID.Hex()
	return &c, nil
}

func (s *MongoStore) DeleteContact(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.contacts, id)
}

func (s *MongoStore) MarkContactNotified(ctx context.Context, id string) error {
	return s.setNotified(ctx, s.contacts, id)
}

func (s *MongoStore) InsertTrip(ctx context.Context, t *Trip) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	res, err := s.trips.InsertOne(ctx, tripDoc{Trip: *t})
	if err != nil {
		return errors.Join(ErrFailedToStoreRecord, err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		t.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) ListTrips(ctx context.Context, driverID string) ([]Trip, error) {
	cur, err := s.trips.Find(ctx, bson.M{"driverId": driverID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	defer cur.Close(ctx)

	var trips []Trip
	for cur.Next(ctx) {
		var doc tripDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Join(ErrFailedToLoadRecord, err)
		}
		t := doc.Trip
		t.ID = doc.ID.Hex()
		trips = append(trips, t)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	return trips, nil
}

func (s *MongoStore) FindTrip(ctx context.Context, id string) (*Trip, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrEnquiryNotFound
	}

	var doc tripDoc
	if err := s.trips.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEnquiryNotFound
		}
		return nil, errors.Join(ErrFailedToLoadRecord, err)
	}
	t := doc.Trip
	t.ID = doc.ID.Hex()
	return &t, nil
}

func (s *MongoStore) UpdateTripStatus(ctx context.Context, id string, status TripStatus) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrEnquiryNotFound
	}

	res, err := s.trips.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return errors.Join(ErrFailedToStoreRecord, err)
	}
	if res.MatchedCount == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}

func (s *MongoStore) DeleteTrip(ctx context.Context, id string) error {
	return s.deleteByID(ctx, s.trips, id)
}

func (s *MongoStore) MarkTripNotified(ctx context.Context, id string) error {
	return s.setNotified(ctx, s.trips, id)
}

func (s *MongoStore) deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrEnquiryNotFound
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Join(ErrFailedToStoreRecord, err)
	}
	if res.DeletedCount == 0 {
		return ErrEnquiryNotFound
	}
	return nil
}

func (s *MongoStore) setNotified(ctx context.Context, col *mongo.Collection, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrEnquiryNotFound
	}

	_, err = col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"whatsappSent": true}},
	)
	if err != nil {
		return errors.Join(ErrFailedToStoreRecord, err)
	}
	return nil
}

package coupon

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const couponsCollection = "coupons"

type couponDoc struct {
	ID     bson.ObjectID `bson:"_id,omitempty"`
	Coupon `bson:",inline"`
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a coupon store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(couponsCollection)}
}

// EnsureIndexes creates the unique code index. Call once on startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	})
	return err
}

func (s *MongoStore) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	return s.findOne(ctx, bson.M{"code": code})
}

func (s *MongoStore) Find(ctx context.Context, id string) (*Coupon, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrCouponNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*Coupon, error) {
	var doc couponDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCouponNotFound
		}
		return nil, errors.Join(ErrFailedToLoadCoupon, err)
	}
	coupon := doc.Coupon
	coupon.ID = doc.ID.Hex()
	return &coupon, nil
}

func (s *MongoStore) List(ctx context.Context, offset, limit int) ([]Coupon, int64, error) {
	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.Join(ErrFailedToLoadCoupon, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, errors.Join(ErrFailedToLoadCoupon, err)
	}
	defer cur.Close(ctx)

	var coupons []Coupon
	for cur.Next(ctx) {
		var doc couponDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, errors.Join(ErrFailedToLoadCoupon, err)
		}
		coupon := doc.Coupon
		coupon.ID = doc.ID.Hex()
		coupons = append(coupons, coupon)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, errors.Join(ErrFailedToLoadCoupon, err)
	}
	return coupons, total, nil
}

func (s *MongoStore) Insert(ctx context.Context, coupon *Coupon) error {
	now := time.Now().UTC()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, couponDoc{Coupon: *coupon})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCouponExists
		}
		return errors.Join(ErrFailedToStoreCoupon, err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		coupon.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, coupon *Coupon) error {
	oid, err := bson.ObjectIDFromHex(coupon.ID)
	if err != nil {
		return ErrCouponNotFound
	}

	coupon.UpdatedAt = time.Now().UTC()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": oid}, couponDoc{ID: oid, Coupon: *coupon})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCouponExists
		}
		return errors.Join(ErrFailedToStoreCoupon, err)
	}
	if res.MatchedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrCouponNotFound
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Join(ErrFailedToStoreCoupon, err)
	}
	if res.DeletedCount == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// CommitUsage performs a single conditional increment so two concurrent
// confirmations cannot push a counter past its limit. Limit checks live in
// the filter: a document only matches while both counters are under their
// caps, and zero means unlimited.
func (s *MongoStore) CommitUsage(ctx context.Context, code, tenantID string) error {
	userField := "usedByUsers." + tenantID

	filter := bson.M{
		"code": code,
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"totalUsageLimit": 0},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$totalUsageLimit"}}},
			}},
			bson.M{"$or": bson.A{
				bson.M{"perUserUsageLimit": 0},
				bson.M{userField: bson.M{"$exists": false}},
				bson.M{"$expr": bson.M{"$lt": bson.A{"$" + userField, "$perUserUsageLimit"}}},
			}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usedCount": 1, userField: 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Join(ErrUsageCommitFailed, err)
	}
	if res.MatchedCount == 0 {
		return ErrUsageCommitFailed
	}
	return nil
}

package website

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taxisafar/sitekit/billing"
)

const websitesCollection = "websites"

type websiteDoc struct {
	ID      bson.ObjectID `bson:"_id,omitempty"`
	Website `bson:",inline"`
}

// MongoStore implements Store and billing.SiteStore on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a website store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(websitesCollection)}
}

// EnsureIndexes creates the unique driver and slug indexes. Call once on
// startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "driverId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "subscriptionHistory.orderId", Value: 1}}},
	})
	return err
}

func (s *MongoStore) FindByDriver(ctx context.Context, driverID string) (*Website, error) {
	return s.findOne(ctx, bson.M{"driverId": driverID})
}

func (s *MongoStore) FindBySlug(ctx context.Context, slug string) (*Website, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*Website, error) {
	var doc websiteDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrWebsiteNotFound
		}
		return nil, errors.Join(ErrFailedToLoadSite, err)
	}
	site := doc.Website
	site.ID = doc.ID.Hex()
	return &site, nil
}

func (s *MongoStore) Insert(ctx context.Context, site *Website) error {
	now := time.Now().UTC()
	site.CreatedAt = now
	site.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, websiteDoc{Website: *site})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrWebsiteExists
		}
		return errors.Join(ErrFailedToStoreSite, err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		site.ID = oid.Hex()
	}
	return nil
}

// Update writes content fields only. Subscription, history and paidTill are
// deliberately absent from the $set: those move exclusively through the
// billing.SiteStore methods below, so a dashboard save racing a payment
// confirmation cannot undo it.
func (s *MongoStore) Update(ctx context.Context, site *Website) error {
	site.UpdatedAt = time.Now().UTC()

	res, err := s.col.UpdateOne(ctx,
		bson.M{"driverId": site.DriverID},
		bson.M{"$set": bson.M{
			"themeId":       site.ThemeID,
			"slug":          site.Slug,
			"isLive":        site.Live,
			"basicInfo":     site.BasicInfo,
			"packages":      site.Packages,
			"popularPrices": site.PopularPrices,
			"reviews":       site.Reviews,
			"socialLinks":   site.SocialLinks,
			"sections":      site.Sections,
			"themeHistory":  site.ThemeChanges,
			"qr":            site.QR,
			"updatedAt":     site.UpdatedAt,
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrWebsiteExists
		}
		return errors.Join(ErrFailedToStoreSite, err)
	}
	if res.MatchedCount == 0 {
		return ErrWebsiteNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, driverID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"driverId": driverID})
	if err != nil {
		return errors.Join(ErrFailedToStoreSite, err)
	}
	if res.DeletedCount == 0 {
		return ErrWebsiteNotFound
	}
	return nil
}

// SubscriptionState implements billing.SiteStore. A driver without a site
// yet gets an empty state rather than an error, so the first purchase can
// proceed before any content exists.
func (s *MongoStore) SubscriptionState(ctx context.Context, driverID string) (*billing.SubscriptionState, error) {
	site, err := s.FindByDriver(ctx, driverID)
	if errors.Is(err, ErrWebsiteNotFound) {
		return &billing.SubscriptionState{DriverID: driverID}, nil
	}
	if err != nil {
		return nil, err
	}

	return &billing.SubscriptionState{
		DriverID:     driverID,
		Subscription: site.Subscription,
		PaidTill:     site.PaidTill,
		History:      site.SubscriptionHistory,
	}, nil
}

// AppendHistory implements billing.SiteStore. Upserts so the first pending
// order creates the site document.
func (s *MongoStore) AppendHistory(ctx context.Context, driverID string, entry billing.HistoryEntry) error {
	now := time.Now().UTC()

	_, err := s.col.UpdateOne(ctx,
		bson.M{"driverId": driverID},
		bson.M{
			"$push": bson.M{"subscriptionHistory": entry},
			"$set":  bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{
				"driverId":  driverID,
				"themeId":   entry.ThemeID,
				"isLive":    false,
				"createdAt": now,
			},
		},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return errors.Join(ErrFailedToStoreSite, err)
	}
	return nil
}

// SettleOrder implements billing.SiteStore. The filter matches only while
// the history entry is still pending, so two racing confirmations cannot
// both settle the same order.
func (s *MongoStore) SettleOrder(ctx context.Context, driverID, orderID, paymentID string, sub billing.Subscription, paidTill time.Time) error {
	site, err := s.FindByDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, ErrWebsiteNotFound) {
			return billing.ErrSiteNotFound
		}
		return err
	}

	now := time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"subscriptionHistory.$.status":    billing.StatusPaid,
			"subscriptionHistory.$.paymentId": paymentID,
			"subscriptionHistory.$.paidAt":    now,
			"subscription":                    sub,
			"paidTill":                        paidTill,
			"themeId":                         sub.ThemeID,
			"isLive":                          true,
			"updatedAt":                       now,
		},
	}
	if site.ThemeID != "" && site.ThemeID != sub.ThemeID {
		update["$push"] = bson.M{"themeHistory": ThemeChange{
			FromThemeID: site.ThemeID,
			ToThemeID:   sub.ThemeID,
			ChangedAt:   now,
		}}
	}

	res, err := s.col.UpdateOne(ctx,
		bson.M{
			"driverId": driverID,
			"subscriptionHistory": bson.M{"$elemMatch": bson.M{
				"orderId": orderID,
				"status":  billing.StatusPending,
			}},
		},
		update,
	)
	if err != nil {
		return errors.Join(ErrFailedToStoreSite, err)
	}
	if res.MatchedCount == 0 {
		return billing.ErrOrderNotFound
	}
	return nil
}

// MarkOrderFailed implements billing.SiteStore.
func (s *MongoStore) MarkOrderFailed(ctx context.Context, driverID, orderID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{
			"driverId": driverID,
			"subscriptionHistory": bson.M{"$elemMatch": bson.M{
				"orderId": orderID,
				"status":  billing.StatusPending,
			}},
		},
		bson.M{"$set": bson.M{
			"subscriptionHistory.$.status": billing.StatusFailed,
			"updatedAt":                    time.Now().UTC(),
		}},
	)
	if err != nil {
		return errors.Join(ErrFailedToStoreSite, err)
	}
	if res.MatchedCount == 0 {
		return billing.ErrOrderNotFound
	}
	return nil
}

// RecordExtension implements billing.SiteStore.
func (s *MongoStore) RecordExtension(ctx context.Context, driverID string, entry billing.HistoryEntry, paidTill time.Time) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"driverId": driverID},
		bson.M{
			"$push": bson.M{"subscriptionHistory": entry},
			"$set": bson.M{
				"paidTill":  paidTill,
				"updatedAt": time.Now().UTC(),
			},
		},
	)
	if err != nil {
		return errors.Join(ErrFailedToStoreSite, err)
	}
	if res.MatchedCount == 0 {
		return billing.ErrSiteNotFound
	}
	return nil
}

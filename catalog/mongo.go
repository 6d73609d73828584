package catalog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const themesCollection = "themes"

type themeDoc struct {
	ID    bson.ObjectID `bson:"_id,omitempty"`
	Theme `bson:",inline"`
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a theme store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection(themesCollection)}
}

// EnsureIndexes creates the unique slug index. Call once on startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "themeId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "displayOrder", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	})
	return err
}

func (s *MongoStore) Find(ctx context.Context, id string) (*Theme, error) {
	filter := bson.M{"themeId": id}
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		filter = bson.M{"$or": bson.A{bson.M{"_id": oid}, bson.M{"themeId": id}}}
	}

	var doc themeDoc
	if err := s.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrThemeNotFound
		}
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	theme := doc.Theme
	theme.ID = doc.ID.Hex()
	return &theme, nil
}

func (s *MongoStore) FindActive(ctx context.Context) ([]Theme, error) {
	return s.find(ctx, bson.M{"isActive": true})
}

func (s *MongoStore) FindAll(ctx context.Context) ([]Theme, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]Theme, error) {
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}}))
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	defer cur.Close(ctx)

	var themes []Theme
	for cur.Next(ctx) {
		var doc themeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Join(ErrFailedToLoadCatalog, err)
		}
		theme := doc.Theme
		theme.ID = doc.ID.Hex()
		themes = append(themes, theme)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return themes, nil
}

func (s *MongoStore) Insert(ctx context.Context, theme *Theme) error {
	now := time.Now().UTC()
	theme.CreatedAt = now
	theme.UpdatedAt = now

	if theme.DisplayOrder == 0 {
		order, err := s.nextDisplayOrder(ctx)
		if err != nil {
			return err
		}
		theme.DisplayOrder = order
	}

	res, err := s.col.InsertOne(ctx, themeDoc{Theme: *theme})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrThemeExists
		}
		return errors.Join(ErrFailedToStoreTheme, err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		theme.ID = oid.Hex()
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, theme *Theme) error {
	oid, err := bson.ObjectIDFromHex(theme.ID)
	if err != nil {
		return ErrThemeNotFound
	}

	theme.UpdatedAt = time.Now().UTC()

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": oid}, themeDoc{ID: oid, Theme: *theme})
	if err != nil {
		return errors.Join(ErrFailedToStoreTheme, err)
	}
	if res.MatchedCount == 0 {
		return ErrThemeNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrThemeNotFound
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Join(ErrFailedToStoreTheme, err)
	}
	if res.DeletedCount == 0 {
		return ErrThemeNotFound
	}
	return nil
}

// nextDisplayOrder returns one past the highest display order in use, so new
// themes append to the end of the gallery.
func (s *MongoStore) nextDisplayOrder(ctx context.Context) (int, error) {
	var doc themeDoc
	err := s.col.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "displayOrder", Value: -1}}),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 1, nil
		}
		return 0, errors.Join(ErrFailedToLoadCatalog, err)
	}
	return doc.DisplayOrder + 1, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"vendor-registry-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "vendordb"

// MongoStore keeps one document per vendor with the PAN as _id, so the
// mandatory _id index is the uniqueness constraint.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	coll   *mongo.Collection
}

// OpenMongo connects to url and uses the vendordetails collection of database.
func OpenMongo(ctx context.Context, url, database string) (*MongoStore, error) {
	if url == "" {
		return nil, errors.New("mongo URL is required")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &MongoStore{client: client, db: db, coll: db.Collection(models.TableName)}, nil
}

func byPAN(pan string) bson.D {
	return bson.D{{Key: "_id", Value: pan}}
}

func (s *MongoStore) EnsureSchema(ctx context.Context) error {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: models.TableName}})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(names) > 0 {
		return nil
	}
	if err := s.db.CreateCollection(ctx, models.TableName); err != nil {
		var cmdErr mongo.CommandError
		// NamespaceExists: another process created it first.
		if errors.As(err, &cmdErr) && cmdErr.Code == 48 {
			return nil
		}
		return fmt.Errorf("create %s collection: %w", models.TableName, err)
	}
	return nil
}

func (s *MongoStore) Reset(ctx context.Context) error {
	if err := s.coll.Drop(ctx); err != nil {
		return fmt.Errorf("drop %s collection: %w", models.TableName, err)
	}
	return s.EnsureSchema(ctx)
}

func (s *MongoStore) List(ctx context.Context) ([]models.Vendor, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	vendors := []models.Vendor{}
	if err := cur.All(ctx, &vendors); err != nil {
		return nil, fmt.Errorf("decode vendors: %w", err)
	}
	return vendors, nil
}

func (s *MongoStore) Get(ctx context.Context, pan string) (*models.Vendor, error) {
	var v models.Vendor
	err := s.coll.FindOne(ctx, byPAN(pan)).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor %s: %w", pan, err)
	}
	return &v, nil
}

func (s *MongoStore) Insert(ctx context.Context, v *models.Vendor) error {
	if v.PAN == "" {
		return fmt.Errorf("insert vendor: %w: %s is required", ErrConstraintViolation, models.KeyName)
	}
	if _, err := s.coll.InsertOne(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert vendor %s: %w: %w", v.PAN, ErrDuplicateKey, err)
		}
		return fmt.Errorf("insert vendor %s: %w", v.PAN, err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, pan string, patch map[string]*string) error {
	names := make([]string, 0, len(patch))
	for name := range patch {
		if _, ok := models.LookupField(name); ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		n, err := s.coll.CountDocuments(ctx, byPAN(pan), options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("lookup vendor %s: %w", pan, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}
	sort.Strings(names)

	set := make(bson.D, 0, len(names))
	for _, name := range names {
		set = append(set, bson.E{Key: name, Value: patch[name]})
	}
	res, err := s.coll.UpdateOne(ctx, byPAN(pan), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("update vendor %s: %w", pan, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, pan string) error {
	res, err := s.coll.DeleteOne(ctx, byPAN(pan))
	if err != nil {
		return fmt.Errorf("delete vendor %s: %w", pan, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

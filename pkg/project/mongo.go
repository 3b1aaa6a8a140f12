package project

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kafei-ai/treeflow/pkg/errors"
)

// DefaultCollection is the MongoDB collection holding projects.
const DefaultCollection = "projects"

// MongoStore keeps projects in a MongoDB collection keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
	owned  bool
}

// NewMongoStore connects to uri and uses the projects collection of database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo database name is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStoreFromCollection(client.Database(database).Collection(DefaultCollection))
	s.client = client
	s.owned = true
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect the collection's client.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll, now: time.Now}
}

// Get loads a project by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (Project, error) {
	if err := errors.ValidateProjectID(id); err != nil {
		return Project{}, err
	}

	var p Project
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Project{}, notFound(id)
	}
	if err != nil {
		return Project{}, fmt.Errorf("find project %s: %w", id, err)
	}
	p.Paths = nonNil(p.Paths)
	p.Expanded = nonNil(p.Expanded)
	return p, nil
}

// Put upserts a project.
func (s *MongoStore) Put(ctx context.Context, p Project) (Project, error) {
	p, err := prepare(p, s.now())
	if err != nil {
		return Project{}, err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, opts); err != nil {
		return Project{}, fmt.Errorf("upsert project %s: %w", p.ID, err)
	}
	return p, nil
}

// Delete removes a project.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateProjectID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}

// List returns all project IDs sorted ascending.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode project id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return ids, nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned || s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

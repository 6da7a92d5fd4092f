package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
)

const (
	mongoDefaultDB    = "stacktile"
	mongoCollection   = "snapshots"
	mongoPingTimeout  = 5 * time.Second
	mongoCloseTimeout = 5 * time.Second
)

type mongoRecord struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
	Data      []byte    `bson:"data,omitempty"`
}

func (m mongoRecord) record() Record {
	return Record{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt.UTC(), Data: m.Data}
}

// MongoStore keeps one document per record.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses database db (default "stacktile").
func NewMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	if err := serrors.ValidateMongoURI(uri); err != nil {
		return nil, err
	}
	if db == "" {
		db = mongoDefaultDB
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrCodeStoreUnavailable, err, "connect to mongo")
	}
	err = retry(ctx, connectAttempts, connectDelay, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, mongoPingTimeout)
		defer cancel()
		return transient(client.Ping(pingCtx, readpref.Primary()))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, serrors.Wrap(serrors.ErrCodeStoreUnavailable, err, "ping mongo")
	}

	coll := client.Database(db).Collection(mongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, data []byte) (Record, error) {
	rec, err := newRecord(name, data)
	if err != nil {
		return Record{}, err
	}
	doc := mongoRecord{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt, Data: rec.Data}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, doc, opts); err != nil {
		return Record{}, fmt.Errorf("save snapshot: %w", err)
	}
	return rec, nil
}

func (s *MongoStore) Load(ctx context.Context, ref string) (Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": ref}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
		err = s.coll.FindOne(ctx, bson.M{"name": ref}, opts).Decode(&doc)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, notFound(ref)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load snapshot: %w", err)
	}
	return doc.record(), nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"data": 0})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	var docs []mongoRecord
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode snapshots: %w", err)
	}
	out := make([]Record, len(docs))
	for i, d := range docs {
		out[i] = d.record()
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, ref string) error {
	rec, err := s.Load(ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": rec.ID}); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoCloseTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)

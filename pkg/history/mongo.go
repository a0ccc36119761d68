package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/panotour/pkg/report"
)

const (
	// DefaultDatabase is the database used when none is configured.
	DefaultDatabase = "panotour"
	// DefaultCollection is the collection analyses are written to.
	DefaultCollection = "analyses"
)

// mongoRecord is the stored document. The report is kept as its JSON
// encoding so that the field names match the API output exactly.
type mongoRecord struct {
	ID           string    `bson:"_id"`
	DocumentHash string    `bson:"document_hash"`
	Source       string    `bson:"source,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	Report       []byte    `bson:"report"`
}

// MongoStore persists records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses the analyses collection of
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	coll := client.Database(database).Collection(DefaultCollection)

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save inserts or replaces rec.
func (s *MongoStore) Save(ctx context.Context, rec *Record) error {
	doc, err := toMongo(rec)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record with the given id.
func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var doc mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return fromMongo(doc)
}

// List returns records newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Record
	for cur.Next(ctx) {
		var doc mongoRecord
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		rec, err := fromMongo(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toMongo(rec *Record) (mongoRecord, error) {
	data, err := json.Marshal(rec.Report)
	if err != nil {
		return mongoRecord{}, fmt.Errorf("encode report: %w", err)
	}
	return mongoRecord{
		ID:           rec.ID,
		DocumentHash: rec.DocumentHash,
		Source:       rec.Source,
		CreatedAt:    rec.CreatedAt,
		Report:       data,
	}, nil
}

func fromMongo(doc mongoRecord) (*Record, error) {
	var r report.Report
	if err := json.Unmarshal(doc.Report, &r); err != nil {
		return nil, fmt.Errorf("decode report of %s: %w", doc.ID, err)
	}
	return &Record{
		ID:           doc.ID,
		DocumentHash: doc.DocumentHash,
		Source:       doc.Source,
		CreatedAt:    doc.CreatedAt,
		Report:       &r,
	}, nil
}

var _ Store = (*MongoStore)(nil)

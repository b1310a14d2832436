package database

import (
	"context"
	"errors"
	"fmt"

	"mongoutils/internal/document"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoStore creates a new MongoStore with the given connection string and database name.
func NewMongoStore(ctx context.Context, connectionString, dbName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(connectionString)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &MongoStore{
		client:   client,
		database: client.Database(dbName),
	}, nil
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Get retrieves a document by ID from MongoDB.
func (s *MongoStore) Get(ctx context.Context, collection string, id any) (*document.Document, error) {
	var fields bson.M
	err := s.database.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s/%s: %w", collection, document.FormatID(id), ErrNotFound)
		}
		return nil, err
	}
	return document.New(collection, fields), nil
}

// Find retrieves the documents whose IDs are in ids, projected on fields.
// Missing IDs are skipped; the result order is unspecified.
func (s *MongoStore) Find(ctx context.Context, collection string, ids []any, fields []string) ([]*document.Document, error) {
	opts := options.Find()
	if len(fields) > 0 {
		projection := bson.M{}
		for _, f := range fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	}

	cursor, err := s.database.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, collection, cursor)
}

// List retrieves a paginated list of documents from MongoDB.
func (s *MongoStore) List(ctx context.Context, collection string, offset, limit int) ([]*document.Document, error) {
	opts := options.Find().SetSkip(int64(offset)).SetLimit(int64(limit)).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.database.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, collection, cursor)
}

// Save upserts the whole document, assigning an ObjectID when it has none.
func (s *MongoStore) Save(ctx context.Context, doc *document.Document) error {
	id := doc.EnsureID()
	_, err := s.database.Collection(doc.Collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		doc.Fields,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Remove deletes a document from MongoDB.
func (s *MongoStore) Remove(ctx context.Context, doc *document.Document) error {
	result, err := s.database.Collection(doc.Collection).DeleteOne(ctx, bson.M{"_id": doc.ID()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", doc.Collection, doc.IDString(), ErrNotFound)
	}
	return nil
}

func decodeAll(ctx context.Context, collection string, cursor *mongo.Cursor) ([]*document.Document, error) {
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	docs := make([]*document.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, document.New(collection, row))
	}
	return docs, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
)

const thoughtCollection = "thoughts"

type thoughtDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Message   string             `bson:"message"`
	Hearts    int                `bson:"hearts"`
	CreatedAt int64              `bson:"createdAt"`
}

func (d thoughtDocument) toThought() thought.Thought {
	return thought.Thought{
		ID:        thought.ID(d.ID.Hex()),
		Message:   d.Message,
		Hearts:    d.Hearts,
		CreatedAt: d.CreatedAt,
	}
}

// ThoughtRepository stores thoughts in a MongoDB collection.
type ThoughtRepository struct {
	DB         *mongo.Database
	collection *mongo.Collection
}

// NewThoughtRepository binds the thoughts collection and makes sure its
// indexes exist.
func NewThoughtRepository(ctx context.Context, db *mongo.Database) (*ThoughtRepository, error) {
	collection := db.Collection(thoughtCollection)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "message", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("message_unique"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("createdAt_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ensure thought indexes: %w", err)
	}
	return &ThoughtRepository{DB: db, collection: collection}, nil
}

// List returns the newest thoughts first.
func (r *ThoughtRepository) List(ctx context.Context, limit int) ([]thought.Thought, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []thoughtDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	thoughts := make([]thought.Thought, len(docs))
	for i, d := range docs {
		thoughts[i] = d.toThought()
	}
	return thoughts, nil
}

// Insert adds a new thought document.
func (r *ThoughtRepository) Insert(ctx context.Context, t thought.Thought) error {
	oid, err := objectID(t.ID)
	if err != nil {
		return err
	}
	_, err = r.collection.InsertOne(ctx, thoughtDocument{
		ID:        oid,
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: t.CreatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return thought.ErrDuplicateMessage
	}
	return err
}

// IncrementHearts applies $inc so concurrent likes never lose an update.
func (r *ThoughtRepository) IncrementHearts(ctx context.Context, id thought.ID) (thought.Thought, error) {
	return r.findOneAndUpdate(ctx, id, bson.D{{Key: "$inc", Value: bson.D{{Key: "hearts", Value: 1}}}})
}

// UpdateMessage replaces the message of a single thought.
func (r *ThoughtRepository) UpdateMessage(ctx context.Context, id thought.ID, message string) (thought.Thought, error) {
	return r.findOneAndUpdate(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "message", Value: message}}}})
}

// Delete removes a thought and returns the removed document.
func (r *ThoughtRepository) Delete(ctx context.Context, id thought.ID) (thought.Thought, error) {
	oid, err := objectID(id)
	if err != nil {
		return thought.Thought{}, err
	}

	var doc thoughtDocument
	err = r.collection.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return thought.Thought{}, thought.ErrNotFound
	}
	if err != nil {
		return thought.Thought{}, err
	}
	return doc.toThought(), nil
}

// Ping checks the primary is reachable.
func (r *ThoughtRepository) Ping(ctx context.Context) error {
	return r.DB.Client().Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (r *ThoughtRepository) Close(ctx context.Context) error {
	return r.DB.Client().Disconnect(ctx)
}

func (r *ThoughtRepository) findOneAndUpdate(ctx context.Context, id thought.ID, update bson.D) (thought.Thought, error) {
	oid, err := objectID(id)
	if err != nil {
		return thought.Thought{}, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc thoughtDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return thought.Thought{}, thought.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return thought.Thought{}, thought.ErrDuplicateMessage
	case err != nil:
		return thought.Thought{}, err
	}
	return doc.toThought(), nil
}

func objectID(id thought.ID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", thought.ErrMalformedID, id)
	}
	return oid, nil
}

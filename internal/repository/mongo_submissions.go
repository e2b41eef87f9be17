package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/legalnest/backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSubmissionsRepository stores each collection in the mongo collection of
// the same name. The id is the document's ObjectID in hex.
type MongoSubmissionsRepository struct {
	db  *mongo.Database
	now func() time.Time
}

func NewMongoSubmissionsRepository(db *mongo.Database) *MongoSubmissionsRepository {
	return &MongoSubmissionsRepository{db: db, now: time.Now}
}

var _ SubmissionsRepository = (*MongoSubmissionsRepository)(nil)

type mongoSubmission struct {
	ID               primitive.ObjectID `bson:"_id"`
	model.Submission `bson:",inline"`
}

func (r *MongoSubmissionsRepository) Append(ctx context.Context, collection string, s model.Submission) (model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return model.Submission{}, err
	}

	oid := primitive.NewObjectID()
	// BSON dates carry millisecond precision
	s = stamp(s, kind, oid.Hex(), r.now().Truncate(time.Millisecond))

	if _, err := r.db.Collection(collection).InsertOne(ctx, mongoSubmission{ID: oid, Submission: s}); err != nil {
		return model.Submission{}, fmt.Errorf("insert %s: %w", collection, err)
	}
	return s, nil
}

func (r *MongoSubmissionsRepository) List(ctx context.Context, collection string) ([]model.Submission, error) {
	kind, err := kindOf(collection)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	var docs []mongoSubmission
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([]model.Submission, 0, len(docs))
	for _, d := range docs {
		s := d.Submission
		s.ID = d.ID.Hex()
		s.Kind = kind
		out = append(out, s)
	}
	return out, nil
}

// EnsureIndexes creates the createdAt index used by List on every collection.
func (r *MongoSubmissionsRepository) EnsureIndexes(ctx context.Context) error {
	for name := range collections {
		_, err := r.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}
	return nil
}

func (r *MongoSubmissionsRepository) Mode() Mode { return ModeMongo }

func (r *MongoSubmissionsRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.db.Client().Disconnect(ctx)
}

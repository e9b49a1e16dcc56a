package data

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SubmissionsStore performs submission DB operations. The intake pipeline
// only ever inserts; reads exist for the admin surface.
type SubmissionsStore struct {
	coll *mongo.Collection
}

// NewSubmissionsStore returns a SubmissionsStore using the given collection.
func NewSubmissionsStore(coll *mongo.Collection) *SubmissionsStore {
	return &SubmissionsStore{coll: coll}
}

// Insert writes one submission document and returns it with the generated ID.
func (s *SubmissionsStore) Insert(ctx context.Context, sub *Submission) (*Submission, error) {
	result, err := s.coll.InsertOne(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = result.InsertedID.(bson.ObjectID)
	return sub, nil
}

// ListRecent returns the newest submissions, most recent first.
func (s *SubmissionsStore) ListRecent(ctx context.Context, limit int64) ([]*Submission, error) {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []*Submission
	if err = cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

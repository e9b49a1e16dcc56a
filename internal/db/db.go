// Package db manages the MongoDB connection and collections.
package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Client wraps mongo.Client and exposes the portfolio collections. The
// underlying driver client is thread-safe and pools connections, so one
// Client is created at startup and shared by every request.
type Client struct {
	client *mongo.Client

	// db is the "portfolio" database; the submissions collection is
	// accessed through it.
	db *mongo.Database
}

// New connects to MongoDB and returns a Client.
func New(ctx context.Context, mongoURI string) (*Client, error) {
	// Fail fast if MongoDB is unreachable; keep the pool small, this
	// service sees contact-form traffic, not a firehose.
	opts := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify the connection actually works before handing it out.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &Client{
		client: client,
		db:     client.Database("portfolio"),
	}, nil
}

// SubmissionsCollection returns the form_submissions collection.
func (c *Client) SubmissionsCollection() *mongo.Collection {
	return c.db.Collection("form_submissions")
}

// Ping verifies the server is still reachable; used by the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// CreateIndexes creates the indexes the admin read path relies on.
func (c *Client) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			// newest-first listing of submissions
			Keys: map[string]int{"createdAt": -1},
		},
		{
			// lookups by sender address
			Keys: map[string]int{"email": 1},
		},
	}

	_, err := c.SubmissionsCollection().Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create submission indexes: %w", err)
	}
	return nil
}

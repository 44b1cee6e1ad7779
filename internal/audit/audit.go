// Package audit records order lifecycle events to MongoDB. The recorder is
// optional: a nil *Recorder is a no-op, so the API runs without Mongo
// configured.
package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "order_audit"

// Entry is one audit document
type Entry struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Action    string    `bson:"action" json:"action"` // order_placed, status_updated, order_cancelled
	OrderID   uint      `bson:"order_id" json:"orderId"`
	UserID    uint      `bson:"user_id" json:"userId"` // Acting user
	Data      bson.M    `bson:"data" json:"data"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Recorder writes and reads the audit trail
type Recorder struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewRecorder connects to Mongo and pings it
func NewRecorder(ctx context.Context, uri, database string) (*Recorder, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Recorder{
		client:     client,
		collection: client.Database(database).Collection(collectionName),
	}, nil
}

// Record inserts an audit entry. Failures are logged, never surfaced: the
// audit trail must not fail the request that produced it.
func (r *Recorder) Record(ctx context.Context, action string, orderID, userID uint, data bson.M) {
	if r == nil {
		return
	}
	entry := Entry{
		Action:    action,
		OrderID:   orderID,
		UserID:    userID,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"action":   action,
			"order_id": orderID,
			"error":    err.Error(),
		}).Warn("Failed to record audit entry")
	}
}

// ForOrder returns an order's audit trail, newest first
func (r *Recorder) ForOrder(ctx context.Context, orderID uint, limit int64) ([]Entry, error) {
	if r == nil {
		return []Entry{}, nil
	}
	filter := bson.M{"order_id": orderID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close disconnects the underlying client
func (r *Recorder) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

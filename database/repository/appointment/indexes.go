// FILE: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the slot queries rely on.
func (r *mongoAppointmentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Window lookups and range scans.
		{
			Keys:    bson.D{{Key: "start", Value: 1}, {Key: "end", Value: 1}},
			Options: options.Index().SetName("start_end_idx"),
		},
		{
			Keys:    bson.D{{Key: "calendarId", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("calendar_start_idx"),
		},
		{
			Keys:    bson.D{{Key: "generated", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("generated_start_idx").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "bookings.id", Value: 1}},
			Options: options.Index().SetName("booking_id_idx").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "bookings.ownerId", Value: 1}},
			Options: options.Index().SetName("booking_owner_idx").SetSparse(true),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}

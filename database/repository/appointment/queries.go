// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"

	"calendo/models"
	"calendo/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var chronological = bson.D{{Key: "start", Value: 1}, {Key: "end", Value: 1}, {Key: "id", Value: 1}}

func (r *mongoAppointmentRepo) find(ctx context.Context, filter bson.M) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(chronological))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointments: %w", err)
	}
	defer cursor.Close(ctx)

	slots := []models.Slot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return slots, nil
}

func (r *mongoAppointmentRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	var slot models.Slot
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &slot, nil
}

func (r *mongoAppointmentRepo) GetAll(ctx context.Context, f models.SlotFilter) ([]models.Slot, error) {
	filter := bson.M{}
	if f.CalendarID != "" {
		filter["calendarId"] = f.CalendarID
	}
	if f.OwnerID != "" {
		filter["bookings.ownerId"] = f.OwnerID
	}
	window := bson.M{}
	if f.From != "" {
		window["$gte"] = f.From
	}
	if f.To != "" {
		window["$lt"] = f.To
	}
	if len(window) > 0 {
		filter["start"] = window
	}
	return r.find(ctx, filter)
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// GetByWindow returns the slot with exactly this window. When several share
// it, the one with the most remaining capacity wins.
func (r *mongoAppointmentRepo) GetByWindow(ctx context.Context, start, end string) (*models.Slot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "remainingCapacity", Value: -1}, {Key: "id", Value: 1}})
	return r.findOne(ctx, bson.M{"start": start, "end": end}, opts)
}

func (r *mongoAppointmentRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Slot, error) {
	return r.findOne(ctx, bson.M{"bookings.id": bookingID})
}

// GetInRange returns slots starting in [from, to).
func (r *mongoAppointmentRepo) GetInRange(ctx context.Context, from, to string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{"start": bson.M{"$gte": from, "$lt": to}})
}

// GetOverlapping returns slots whose window intersects [start, end).
func (r *mongoAppointmentRepo) GetOverlapping(ctx context.Context, start, end string) ([]models.Slot, error) {
	return r.find(ctx, bson.M{
		"start": bson.M{"$lt": end},
		"end":   bson.M{"$gt": start},
	})
}

func (r *mongoAppointmentRepo) CountGeneratedInRange(ctx context.Context, from, to string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{
		"start":     bson.M{"$gte": from, "$lt": to},
		"generated": true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

// File: database/repository/appointment/crud.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calendo/models"
	"calendo/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoAppointmentRepo) CreateMany(ctx context.Context, slots []models.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	now := time.Now()
	docs := make([]interface{}, len(slots))
	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.New().String()
		}
		if slot.Bookings == nil {
			slot.Bookings = []models.Booking{}
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		slot.Refresh()
		docs[i] = slot
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to insert appointments: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) ReplaceVersioned(ctx context.Context, slot *models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	expected := slot.Version
	if slot.Bookings == nil {
		slot.Bookings = []models.Booking{}
	}
	slot.Refresh()
	slot.Version = expected + 1
	slot.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": slot.ID, "version": expected}, slot)
	if err != nil {
		slot.Version = expected
		return fmt.Errorf("failed to replace appointment %s: %w", slot.ID, err)
	}
	if res.MatchedCount == 0 {
		slot.Version = expected
		return fmt.Errorf("appointment %s at version %d: %w", slot.ID, expected, ErrConditionFailed)
	}
	return nil
}

func (r *mongoAppointmentRepo) UpdateFields(ctx context.Context, id string, update models.SlotUpdate) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Visibility != nil {
		set["visibility"] = *update.Visibility
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot models.Slot
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}, opts).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	return &slot, nil
}

func (r *mongoAppointmentRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoAppointmentRepo) DeleteVersioned(ctx context.Context, id string, version int) error {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "version": version})
	if err != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("appointment %s at version %d: %w", id, version, ErrConditionFailed)
	}
	return nil
}

// DeleteEmptyAvailableOverlapping removes available slots with no bookings
// whose window intersects [start, end).
func (r *mongoAppointmentRepo) DeleteEmptyAvailableOverlapping(ctx context.Context, start, end string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	filter := bson.M{
		"calendarId": models.CalendarAvailable,
		"start":      bson.M{"$lt": end},
		"end":        bson.M{"$gt": start},
		"$or": bson.A{
			bson.M{"bookings": bson.M{"$size": 0}},
			bson.M{"bookings": nil},
		},
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to clear available slots in %s-%s: %w", start, end, err)
	}
	return res.DeletedCount, nil
}

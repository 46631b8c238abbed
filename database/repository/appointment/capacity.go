// File: database/repository/appointment/capacity.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calendo/models"
	"calendo/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClaimCapacity is a compare-and-decrement on remainingCapacity. The filter
// carries every precondition, and the pipeline pushes the booking, decrements
// the counter and re-derives calendarId and title in the same write.
func (r *mongoAppointmentRepo) ClaimCapacity(ctx context.Context, slotID string, booking models.Booking) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	filter := bson.M{
		"id":                slotID,
		"remainingCapacity": bson.M{"$gt": 0},
		"bookings.ownerId":  bson.M{"$ne": booking.OwnerID},
		"bookings.clientId": bson.M{"$ne": booking.ClientID},
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "bookings", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$bookings", bson.A{}}}},
				bson.A{bson.D{{Key: "$literal", Value: booking}}},
			}}}},
			{Key: "sharedWith", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$sharedWith", bson.A{}}}},
				bson.A{bson.D{{Key: "$literal", Value: booking.ClientID}}},
			}}}},
			{Key: "remainingCapacity", Value: bson.D{{Key: "$subtract", Value: bson.A{"$remainingCapacity", 1}}}},
			{Key: "version", Value: bson.D{{Key: "$add", Value: bson.A{"$version", 1}}}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "calendarId", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$gt", Value: bson.A{"$remainingCapacity", 0}}},
				string(models.CalendarAvailable),
				string(models.CalendarBooked),
			}}}},
			{Key: "title", Value: bson.D{{Key: "$switch", Value: bson.D{
				{Key: "branches", Value: bson.A{
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$gt", Value: bson.A{"$remainingCapacity", 0}}}},
						{Key: "then", Value: models.TitleAvailable},
					},
					bson.D{
						{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$size", Value: "$bookings"}}, 1}}}},
						{Key: "then", Value: bson.D{{Key: "$literal", Value: models.BookedTitle(booking.OwnerName)}}},
					},
				}},
				{Key: "default", Value: models.TitleFullyBooked},
			}}}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var slot models.Slot
	if err := r.coll.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to claim capacity on %s: %w", slotID, err)
	}
	return &slot, nil
}

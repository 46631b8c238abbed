// File: database/repository/appointment/locks.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"calendo/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LockWorkers bumps a per-worker counter. Inside a transaction the write
// claims the worker's lock document, so a second transaction touching the
// same worker fails with a write conflict instead of committing a double
// booking.
func (r *mongoAppointmentRepo) LockWorkers(ctx context.Context, workerIDs ...string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	seen := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		_, err := r.locks.UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{
				"$inc": bson.M{"seq": 1},
				"$set": bson.M{"lockedAt": time.Now()},
			},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("failed to lock worker %s: %w", id, err)
		}
	}
	return nil
}

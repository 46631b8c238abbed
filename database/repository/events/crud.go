package eventsRepo

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

// Create inserts a new internal event and fills in its ID.
func (r *mongoEventRepo) Create(ctx context.Context, event *models.InternalEvent) error {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.SharedWith == nil {
		event.SharedWith = []string{}
	}
	event.Visibility = models.VisibilityInternal
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create internal event: %w", err)
	}
	return nil
}

func (r *mongoEventRepo) GetByID(ctx context.Context, id string) (*models.InternalEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	var event models.InternalEvent
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// GetAll returns every internal event ordered by start.
func (r *mongoEventRepo) GetAll(ctx context.Context) ([]models.InternalEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "start", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.InternalEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoEventRepo) Update(ctx context.Context, id string, update models.InternalEventUpdate) (*models.InternalEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Start != nil {
		set["start"] = *update.Start
	}
	if update.End != nil {
		set["end"] = *update.End
	}
	if update.CalendarID != nil {
		set["calendarId"] = *update.CalendarID
	}
	if update.SharedWith != nil {
		set["sharedWith"] = *update.SharedWith
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event models.InternalEvent
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update internal event %s: %w", id, err)
	}
	return &event, nil
}

// DeleteByID removes an internal event by ID.
func (r *mongoEventRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, utils.RepoTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

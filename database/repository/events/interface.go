package eventsRepo

import (
	"context"
	"errors"

	"calendo/database"
	"calendo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("internal event not found")

type InternalEventRepository interface {
	Create(ctx context.Context, event *models.InternalEvent) error
	GetByID(ctx context.Context, id string) (*models.InternalEvent, error)
	GetAll(ctx context.Context) ([]models.InternalEvent, error)
	Update(ctx context.Context, id string, update models.InternalEventUpdate) (*models.InternalEvent, error)
	DeleteByID(ctx context.Context, id string) error
}

type mongoEventRepo struct {
	coll *mongo.Collection
}

// NewMongoEventRepo returns an InternalEventRepository backed by MongoDB.
func NewMongoEventRepo() InternalEventRepository {
	return &mongoEventRepo{
		coll: database.DB().Collection("internal_events"),
	}
}

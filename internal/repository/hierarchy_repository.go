package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"assessment-service/internal/models"
)

type HierarchyRepository struct {
	Col *mongo.Collection
}

func NewHierarchyRepository(db *mongo.Database) *HierarchyRepository {
	return &HierarchyRepository{Col: db.Collection("hierarchies")}
}

func (r *HierarchyRepository) FindByID(ctx context.Context, id string) (*models.Hierarchy, error) {
	var h models.Hierarchy
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&h)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HierarchyRepository) Upsert(ctx context.Context, h *models.Hierarchy) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": h.ID}, h, opts)
	return err
}

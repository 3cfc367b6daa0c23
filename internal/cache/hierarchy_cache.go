package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"assessment-service/internal/apperr"
	"assessment-service/internal/models"
	"assessment-service/internal/repository"
)

// HierarchyCache fronts the hierarchy collection with a Redis TTL cache.
// A miss fetches from Mongo and populates before returning; this is the
// only blocking dependency on the scoring hot path.
type HierarchyCache struct {
	client *redis.Client
	repo   *repository.HierarchyRepository
	ttl    time.Duration
}

func NewHierarchyCache(client *redis.Client, repo *repository.HierarchyRepository, ttl time.Duration) *HierarchyCache {
	return &HierarchyCache{client: client, repo: repo, ttl: ttl}
}

func hierarchyKey(id string) string { return "assessment:hierarchy:" + id }

func (c *HierarchyCache) GetHierarchy(ctx context.Context, assessmentID string) (*models.Hierarchy, error) {
	if raw, err := c.client.Get(ctx, hierarchyKey(assessmentID)).Bytes(); err == nil {
		var h models.Hierarchy
		if err := json.Unmarshal(raw, &h); err == nil {
			return &h, nil
		}
		// Corrupt entry: drop it and fall through to the source.
		c.client.Del(ctx, hierarchyKey(assessmentID))
	}

	h, err := c.GetHierarchyLive(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(h); err == nil {
		c.client.Set(ctx, hierarchyKey(assessmentID), raw, c.ttl)
	}
	return h, nil
}

// GetHierarchyLive bypasses the cache. Practice assessments and edit-mode
// previews always read live.
func (c *HierarchyCache) GetHierarchyLive(ctx context.Context, assessmentID string) (*models.Hierarchy, error) {
	h, err := c.repo.FindByID(ctx, assessmentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.NotFound(apperr.CodeHierarchyNotFound, "assessment not found")
		}
		return nil, apperr.Dependency(apperr.CodeStoreFailure, "loading hierarchy", err)
	}
	return h, nil
}

// Invalidate drops the cached entry, e.g. after a content-side update.
func (c *HierarchyCache) Invalidate(ctx context.Context, assessmentID string) error {
	return c.client.Del(ctx, hierarchyKey(assessmentID)).Err()
}

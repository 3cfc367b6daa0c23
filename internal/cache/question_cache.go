package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"assessment-service/internal/apperr"
	"assessment-service/internal/models"
	"assessment-service/internal/repository"
)

// QuestionCache caches question definitions per id. Misses are fetched
// from Mongo in one batch and populated individually.
type QuestionCache struct {
	client *redis.Client
	repo   *repository.QuestionRepository
	ttl    time.Duration
}

func NewQuestionCache(client *redis.Client, repo *repository.QuestionRepository, ttl time.Duration) *QuestionCache {
	return &QuestionCache{client: client, repo: repo, ttl: ttl}
}

func questionKey(id string) string { return "assessment:question:" + id }

func (c *QuestionCache) GetQuestions(ctx context.Context, ids []string) (map[string]models.Question, error) {
	questions := make(map[string]models.Question, len(ids))
	var missing []string

	for _, id := range ids {
		raw, err := c.client.Get(ctx, questionKey(id)).Bytes()
		if err != nil {
			missing = append(missing, id)
			continue
		}
		var q models.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			missing = append(missing, id)
			continue
		}
		questions[id] = q
	}

	if len(missing) > 0 {
		fetched, err := c.repo.FindByIDs(ctx, missing)
		if err != nil {
			return nil, apperr.Dependency(apperr.CodeStoreFailure, "loading questions", err)
		}
		for id, q := range fetched {
			questions[id] = q
			if raw, err := json.Marshal(q); err == nil {
				c.client.Set(ctx, questionKey(id), raw, c.ttl)
			}
		}
	}
	return questions, nil
}

func (c *QuestionCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, questionKey(id)).Err()
}

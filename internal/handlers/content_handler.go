package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"assessment-service/internal/apperr"
	"assessment-service/internal/cache"
	"assessment-service/internal/models"
	"assessment-service/internal/repository"
)

// ContentHandler is the content-side glue: hierarchy and question upserts
// with explicit cache invalidation. Grading never writes through here.
type ContentHandler struct {
	Hierarchies    *repository.HierarchyRepository
	Questions      *repository.QuestionRepository
	HierarchyCache *cache.HierarchyCache
	QuestionCache  *cache.QuestionCache
}

func NewContentHandler(hr *repository.HierarchyRepository, qr *repository.QuestionRepository, hc *cache.HierarchyCache, qc *cache.QuestionCache) *ContentHandler {
	return &ContentHandler{Hierarchies: hr, Questions: qr, HierarchyCache: hc, QuestionCache: qc}
}

func (h *ContentHandler) UpsertHierarchy(c *gin.Context) {
	var hierarchy models.Hierarchy
	if err := c.ShouldBindJSON(&hierarchy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperr.CodeMalformedRequest})
		return
	}
	hierarchy.ID = c.Param("id")
	if hierarchy.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "assessment id is required", "code": apperr.CodeMissingAssessmentID})
		return
	}

	ctx := context.Background()
	if err := h.Hierarchies.Upsert(ctx, &hierarchy); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": apperr.CodeStoreFailure})
		return
	}
	if err := h.HierarchyCache.Invalidate(ctx, hierarchy.ID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": apperr.CodeCacheFailure})
		return
	}
	c.JSON(http.StatusOK, hierarchy)
}

func (h *ContentHandler) BulkUpsertQuestions(c *gin.Context) {
	var req struct {
		Questions []models.Question `json:"questions" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperr.CodeMalformedRequest})
		return
	}

	ctx := context.Background()
	for i := range req.Questions {
		q := &req.Questions[i]
		if err := h.Questions.Upsert(ctx, q); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": apperr.CodeStoreFailure})
			return
		}
		if err := h.QuestionCache.Invalidate(ctx, q.ID); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": apperr.CodeCacheFailure})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"upserted": len(req.Questions)})
}

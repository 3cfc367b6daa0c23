package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"assessment-service/internal/apperr"
	"assessment-service/internal/models"
	"assessment-service/internal/service"
)

type AssessmentHandler struct {
	Service *service.AssessmentService
}

func NewAssessmentHandler(s *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{Service: s}
}

// ReadAssessment returns the attempt view for the requesting user. Pass
// edit=true for an untracked preview.
func (h *AssessmentHandler) ReadAssessment(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	assessmentID := c.Param("id")
	editMode := c.Query("edit") == "true"

	attempt, err := h.Service.ReadAssessment(context.Background(), userID, assessmentID, editMode)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, attempt)
}

// ReadQuestionList returns sanitized question definitions for ids given as
// a comma separated query parameter.
func (h *AssessmentHandler) ReadQuestionList(c *gin.Context) {
	raw := c.Query("ids")
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	questions, err := h.Service.ReadQuestionList(context.Background(), ids)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	assessmentID := c.Param("id")

	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  apperr.CodeMalformedRequest,
		})
		return
	}

	result, err := h.Service.SubmitAssessment(context.Background(), userID, assessmentID, &sub)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AssessmentHandler) SaveAssessmentDraft(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	assessmentID := c.Param("id")

	var req struct {
		Sections []models.SubmittedSection `json:"sections" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  apperr.CodeMalformedRequest,
		})
		return
	}

	if err := h.Service.SaveAssessmentDraft(context.Background(), userID, assessmentID, req.Sections); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Draft saved"})
}

func (h *AssessmentHandler) ReadSavePoint(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	assessmentID := c.Param("id")

	draft, err := h.Service.ReadSavePoint(context.Background(), userID, assessmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func (h *AssessmentHandler) RetakeAttemptInfo(c *gin.Context) {
	userID := c.GetHeader("X-User-ID")
	assessmentID := c.Param("id")

	info, err := h.Service.RetakeAttemptInfo(context.Background(), userID, assessmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *AssessmentHandler) AutoPublish(c *gin.Context) {
	assessmentID := c.Param("id")

	published, err := h.Service.AutoPublish(context.Background(), assessmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"published": published})
}

// writeError maps the error taxonomy onto HTTP statuses. Validation and
// state conflicts always surface their reason code.
func writeError(c *gin.Context, err error) {
	e, ok := err.(*apperr.Error)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindStateConflict:
		status = http.StatusConflict
	case apperr.KindDependency:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": e.Message, "code": e.Code})
}

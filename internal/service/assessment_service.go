package service

import (
	"context"
	"log"
	"time"

	"assessment-service/internal/apperr"
	"assessment-service/internal/models"
	"assessment-service/internal/scoring"
	"assessment-service/internal/session"
)

// Collaborator contracts. The orchestrator only sees these; Mongo, Redis
// and AMQP stay behind them.
type HierarchyProvider interface {
	GetHierarchy(ctx context.Context, assessmentID string) (*models.Hierarchy, error)
	GetHierarchyLive(ctx context.Context, assessmentID string) (*models.Hierarchy, error)
}

type QuestionProvider interface {
	GetQuestions(ctx context.Context, ids []string) (map[string]models.Question, error)
}

type SessionStore interface {
	session.Store
	FindExpiredInProgress(ctx context.Context, assessmentID string, cutoff time.Time) ([]models.AssessmentSession, error)
}

type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

const (
	EventSubmitted     = "assessment.submitted"
	EventAutoPublished = "assessment.auto_published"
)

type AssessmentService struct {
	hierarchies HierarchyProvider
	questions   QuestionProvider
	store       SessionStore
	tracker     *session.Tracker
	publisher   Publisher
	now         func() time.Time
}

func NewAssessmentService(
	hierarchies HierarchyProvider,
	questions QuestionProvider,
	store SessionStore,
	tracker *session.Tracker,
	publisher Publisher,
) *AssessmentService {
	return &AssessmentService{
		hierarchies: hierarchies,
		questions:   questions,
		store:       store,
		tracker:     tracker,
		publisher:   publisher,
		now:         time.Now,
	}
}

type RetakeStatus struct {
	MaxAllowed int `json:"max_allowed"`
	Consumed   int `json:"consumed"`
}

// ReadAssessment resolves the attempt a user should see. Practice
// assessments and edit-mode previews bypass session tracking entirely and
// re-fetch the live hierarchy; no row is written for them.
func (s *AssessmentService) ReadAssessment(ctx context.Context, userID, assessmentID string, editMode bool) (*models.AssessmentSession, error) {
	if err := validateIDs(userID, assessmentID); err != nil {
		return nil, err
	}
	if editMode {
		h, err := s.hierarchies.GetHierarchyLive(ctx, assessmentID)
		if err != nil {
			return nil, err
		}
		return untracked(userID, h), nil
	}
	h, err := s.hierarchies.GetHierarchy(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if h.IsPractice() {
		live, err := s.hierarchies.GetHierarchyLive(ctx, assessmentID)
		if err != nil {
			return nil, err
		}
		return untracked(userID, live), nil
	}
	return s.tracker.Resolve(ctx, userID, h)
}

// ReadQuestionList returns sanitized question definitions.
func (s *AssessmentService) ReadQuestionList(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation(apperr.CodeMalformedRequest, "no question ids given")
	}
	questions, err := s.questions.GetQuestions(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := questions[id]; ok {
			out = append(out, q.Sanitized())
		}
	}
	return out, nil
}

// SubmitAssessment scores the submission, persists the terminal attempt and
// publishes the submission event. Practice submissions are scored
// transiently and never persisted.
func (s *AssessmentService) SubmitAssessment(ctx context.Context, userID, assessmentID string, sub *models.Submission) (*models.AssessmentResult, error) {
	if err := validateIDs(userID, assessmentID); err != nil {
		return nil, err
	}
	h, err := s.hierarchies.GetHierarchy(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if h.IsPractice() {
		result, err := s.score(ctx, h, sub.Sections, now, now, scoring.RetakeInfo{MaxAllowed: h.MaxRetakeAttempts})
		if err != nil {
			return nil, err
		}
		result.UserID = userID
		return result, nil
	}

	attempt, consumed, err := s.tracker.Current(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := s.tracker.CheckSubmissionWindow(attempt); err != nil {
		return nil, err
	}
	if err := s.tracker.ValidateIssued(attempt, sub); err != nil {
		return nil, err
	}

	retake := scoring.RetakeInfo{MaxAllowed: h.MaxRetakeAttempts, Consumed: consumed}
	result, err := s.score(ctx, h, sub.Sections, attempt.StartTime, now, retake)
	if err != nil {
		return nil, err
	}
	result.UserID = userID

	if err := s.tracker.Finalize(ctx, attempt, result); err != nil {
		return nil, err
	}

	// The result is durable at this point; a publish failure must not
	// surface to the caller.
	s.publish(EventSubmitted, map[string]interface{}{
		"user_id":       userID,
		"assessment_id": assessmentID,
		"attempt_id":    attempt.ID,
		"pass":          result.Pass,
		"result":        result.OverallResult,
	})
	return result, nil
}

// SaveAssessmentDraft stores a draft on the open attempt.
func (s *AssessmentService) SaveAssessmentDraft(ctx context.Context, userID, assessmentID string, sections []models.SubmittedSection) error {
	if err := validateIDs(userID, assessmentID); err != nil {
		return err
	}
	_, err := s.tracker.SaveDraft(ctx, userID, assessmentID, sections)
	return err
}

// ReadSavePoint returns the saved draft of the open attempt.
func (s *AssessmentService) ReadSavePoint(ctx context.Context, userID, assessmentID string) (*models.SavePoint, error) {
	if err := validateIDs(userID, assessmentID); err != nil {
		return nil, err
	}
	attempt, _, err := s.tracker.Current(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if attempt.Draft == nil {
		return nil, apperr.NotFound(apperr.CodeSavePointNotFound, "no draft saved for this attempt")
	}
	return attempt.Draft, nil
}

// RetakeAttemptInfo reports the retake budget; consumed excludes the
// current open attempt.
func (s *AssessmentService) RetakeAttemptInfo(ctx context.Context, userID, assessmentID string) (*RetakeStatus, error) {
	if err := validateIDs(userID, assessmentID); err != nil {
		return nil, err
	}
	h, err := s.hierarchies.GetHierarchy(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	consumed, err := s.tracker.ConsumedAttempts(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	return &RetakeStatus{MaxAllowed: h.MaxRetakeAttempts, Consumed: consumed}, nil
}

// AutoPublish force-submits every in-progress attempt of the assessment
// whose window has closed, scoring from the saved draft (blank when none).
// Returns how many attempts were finalized. Per-attempt failures are
// logged and skipped.
func (s *AssessmentService) AutoPublish(ctx context.Context, assessmentID string) (int, error) {
	if assessmentID == "" {
		return 0, apperr.Validation(apperr.CodeMissingAssessmentID, "assessment id is required")
	}
	h, err := s.hierarchies.GetHierarchy(ctx, assessmentID)
	if err != nil {
		return 0, err
	}
	expired, err := s.store.FindExpiredInProgress(ctx, assessmentID, s.now())
	if err != nil {
		return 0, apperr.Dependency(apperr.CodeStoreFailure, "loading expired attempts", err)
	}

	published := 0
	for i := range expired {
		attempt := expired[i]
		var sections []models.SubmittedSection
		if attempt.Draft != nil {
			sections = attempt.Draft.Sections
		}
		consumed, err := s.tracker.ConsumedAttempts(ctx, attempt.UserID, assessmentID)
		if err != nil {
			log.Printf("auto-publish: counting attempts for %s: %v", attempt.UserID, err)
			continue
		}
		retake := scoring.RetakeInfo{MaxAllowed: h.MaxRetakeAttempts, Consumed: consumed}
		result, err := s.score(ctx, h, sections, attempt.StartTime, attempt.EndTime, retake)
		if err != nil {
			log.Printf("auto-publish: scoring attempt %s: %v", attempt.ID, err)
			continue
		}
		result.UserID = attempt.UserID
		if err := s.tracker.Finalize(ctx, &attempt, result); err != nil {
			log.Printf("auto-publish: finalizing attempt %s: %v", attempt.ID, err)
			continue
		}
		s.publish(EventAutoPublished, map[string]interface{}{
			"user_id":       attempt.UserID,
			"assessment_id": assessmentID,
			"attempt_id":    attempt.ID,
			"pass":          result.Pass,
		})
		published++
	}
	return published, nil
}

// score runs the engine over the submission and aggregates per the
// hierarchy's cutoff mode.
func (s *AssessmentService) score(ctx context.Context, h *models.Hierarchy, sections []models.SubmittedSection, startTime, completedAt time.Time, retake scoring.RetakeInfo) (*models.AssessmentResult, error) {
	var allIDs []string
	for _, sec := range h.Sections {
		allIDs = append(allIDs, sec.QuestionIDs...)
	}
	questions, err := s.questions.GetQuestions(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	bySection := make(map[string][]models.SubmittedQuestion, len(sections))
	for _, sec := range sections {
		bySection[sec.SectionID] = append(bySection[sec.SectionID], sec.Questions...)
	}

	engine := scoring.NewEngine(h)
	var results []models.SectionResult

	if h.AssessmentType == models.OptionWeightage {
		// Assessment-level cutoff: one virtual section spans everything.
		virtual := models.Section{
			ID:             h.ID,
			Name:           h.Title,
			QuestionIDs:    allIDs,
			PassPercentage: h.MinimumPassPercentage,
		}
		var submitted []models.SubmittedQuestion
		for _, sec := range h.Sections {
			virtual.TotalMarks += sec.TotalMarks
			submitted = append(submitted, bySection[sec.ID]...)
		}
		results = []models.SectionResult{engine.ScoreSection(&virtual, questions, submitted)}
	} else {
		for i := range h.Sections {
			sec := &h.Sections[i]
			results = append(results, engine.ScoreSection(sec, questions, bySection[sec.ID]))
		}
	}

	return scoring.Aggregate(h, results, startTime, completedAt, retake), nil
}

func (s *AssessmentService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		log.Printf("event publish failed for %s: %v", eventType, err)
	}
}

// untracked wraps a live hierarchy view for practice and edit-mode reads.
func untracked(userID string, h *models.Hierarchy) *models.AssessmentSession {
	return &models.AssessmentSession{
		UserID:       userID,
		AssessmentID: h.ID,
		Status:       models.SessionNotStarted,
		Hierarchy:    *h,
	}
}

func validateIDs(userID, assessmentID string) error {
	if userID == "" {
		return apperr.Validation(apperr.CodeMissingUserID, "user id is required")
	}
	if assessmentID == "" {
		return apperr.Validation(apperr.CodeMissingAssessmentID, "assessment id is required")
	}
	return nil
}

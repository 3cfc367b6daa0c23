package session

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"assessment-service/internal/apperr"
	"assessment-service/internal/models"
)

// Store is the persistence collaborator for attempt rows. GetSessions must
// return attempts most-recent-first. No in-process locking is layered on
// top: concurrent submits for one key race at the store and the last write
// wins.
type Store interface {
	GetSessions(ctx context.Context, userID, assessmentID string) ([]models.AssessmentSession, error)
	UpsertSession(ctx context.Context, session *models.AssessmentSession) error
}

// Tracker owns the attempt state machine: not_started -> in_progress ->
// submitted, with in_progress re-enterable as a fresh attempt once the
// previous one is terminal, subject to the retake limit.
type Tracker struct {
	store Store
	grace time.Duration
	now   func() time.Time
}

func NewTracker(store Store, grace time.Duration) *Tracker {
	return &Tracker{store: store, grace: grace, now: time.Now}
}

// Resolve returns the attempt a read should see: the stored in-progress
// attempt verbatim while its window is open, otherwise a freshly created
// attempt when the retake limit allows one.
func (t *Tracker) Resolve(ctx context.Context, userID string, h *models.Hierarchy) (*models.AssessmentSession, error) {
	sessions, err := t.store.GetSessions(ctx, userID, h.ID)
	if err != nil {
		return nil, apperr.Dependency(apperr.CodeStoreFailure, "loading sessions", err)
	}
	now := t.now()

	if len(sessions) > 0 {
		latest := sessions[0]
		if !latest.Terminal(now) {
			return &latest, nil
		}
		// Prior attempt is terminal. The limit check subtracts one after
		// counting and adds one before comparing; both offsets are kept
		// as the call sites have always computed them.
		consumed := countConsumed(sessions) - 1
		if consumed+1 >= h.MaxRetakeAttempts {
			return nil, apperr.StateConflict(apperr.CodeRetakeLimitExceeded, "retake limit reached")
		}
	}

	attempt := t.newAttempt(userID, h, now)
	if err := t.store.UpsertSession(ctx, attempt); err != nil {
		return nil, apperr.Dependency(apperr.CodeStoreFailure, "persisting new attempt", err)
	}
	return attempt, nil
}

// Current returns the open in-progress attempt for a submit or draft save,
// along with the prior consumed-attempt count (exclusive of the open one).
func (t *Tracker) Current(ctx context.Context, userID, assessmentID string) (*models.AssessmentSession, int, error) {
	sessions, err := t.store.GetSessions(ctx, userID, assessmentID)
	if err != nil {
		return nil, 0, apperr.Dependency(apperr.CodeStoreFailure, "loading sessions", err)
	}
	if len(sessions) == 0 {
		return nil, 0, apperr.NotFound(apperr.CodeSessionNotFound, "no attempt exists")
	}
	latest := sessions[0]
	if latest.Status != models.SessionInProgress {
		return nil, 0, apperr.StateConflict(apperr.CodeSessionNotActive, "attempt already submitted")
	}
	return &latest, countConsumed(sessions[1:]), nil
}

// CheckSubmissionWindow fails once now is past endTime plus the grace
// buffer. Reads and draft saves use the bare endTime; only submits get the
// buffer.
func (t *Tracker) CheckSubmissionWindow(s *models.AssessmentSession) error {
	if t.now().After(s.EndTime.Add(t.grace)) {
		return apperr.StateConflict(apperr.CodeSubmissionWindowExpired, "submission window has closed")
	}
	return nil
}

// ValidateIssued ensures the submitted section/question identifiers are a
// subset of the ones issued for the attempt, with each identifier appearing
// at most once.
func (t *Tracker) ValidateIssued(s *models.AssessmentSession, sub *models.Submission) error {
	issued := make(map[string]map[string]bool, len(s.Hierarchy.Sections))
	for _, sec := range s.Hierarchy.Sections {
		qs := make(map[string]bool, len(sec.QuestionIDs))
		for _, id := range sec.QuestionIDs {
			qs[id] = true
		}
		issued[sec.ID] = qs
	}
	seenSections := make(map[string]bool, len(sub.Sections))
	for _, sec := range sub.Sections {
		qs, ok := issued[sec.SectionID]
		if !ok {
			return apperr.StateConflict(apperr.CodeQuestionSetMismatch, "section was not issued for this attempt")
		}
		if seenSections[sec.SectionID] {
			return apperr.StateConflict(apperr.CodeQuestionSetMismatch, "section submitted more than once")
		}
		seenSections[sec.SectionID] = true
		seenQuestions := make(map[string]bool, len(sec.Questions))
		for _, q := range sec.Questions {
			if !qs[q.QuestionID] {
				return apperr.StateConflict(apperr.CodeQuestionSetMismatch, "question was not issued for this attempt")
			}
			if seenQuestions[q.QuestionID] {
				return apperr.StateConflict(apperr.CodeQuestionSetMismatch, "question submitted more than once")
			}
			seenQuestions[q.QuestionID] = true
		}
	}
	return nil
}

// Finalize persists the terminal submitted state with its result.
func (t *Tracker) Finalize(ctx context.Context, s *models.AssessmentSession, result *models.AssessmentResult) error {
	now := t.now()
	s.Status = models.SessionSubmitted
	s.Result = result
	s.SubmittedAt = &now
	if err := t.store.UpsertSession(ctx, s); err != nil {
		return apperr.Dependency(apperr.CodeStoreFailure, "persisting submitted attempt", err)
	}
	return nil
}

// SaveDraft stores a draft snapshot on the open attempt without touching
// status or timers.
func (t *Tracker) SaveDraft(ctx context.Context, userID, assessmentID string, sections []models.SubmittedSection) (*models.AssessmentSession, error) {
	s, _, err := t.Current(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if s.Expired(t.now()) {
		return nil, apperr.StateConflict(apperr.CodeSessionNotActive, "attempt window has elapsed")
	}
	s.Draft = &models.SavePoint{Sections: sections, SavedAt: t.now()}
	if err := t.store.UpsertSession(ctx, s); err != nil {
		return nil, apperr.Dependency(apperr.CodeStoreFailure, "persisting draft", err)
	}
	return s, nil
}

// ConsumedAttempts counts prior attempts whose terminal result is present,
// exclusive of any open attempt.
func (t *Tracker) ConsumedAttempts(ctx context.Context, userID, assessmentID string) (int, error) {
	sessions, err := t.store.GetSessions(ctx, userID, assessmentID)
	if err != nil {
		return 0, apperr.Dependency(apperr.CodeStoreFailure, "loading sessions", err)
	}
	return countConsumed(sessions), nil
}

func (t *Tracker) newAttempt(userID string, h *models.Hierarchy, now time.Time) *models.AssessmentSession {
	return &models.AssessmentSession{
		ID:           uuid.NewString(),
		UserID:       userID,
		AssessmentID: h.ID,
		Status:       models.SessionInProgress,
		StartTime:    now,
		EndTime:      now.Add(time.Duration(h.DurationSeconds) * time.Second),
		Hierarchy:    issuedView(h),
		CreatedAt:    now,
	}
}

// issuedView is the filtered snapshot handed to the user: question order is
// shuffled per section and the scoring configuration maps are stripped.
func issuedView(h *models.Hierarchy) models.Hierarchy {
	view := *h
	view.MarksPerLevel = nil
	view.OptionWeights = nil
	view.Sections = make([]models.Section, len(h.Sections))
	for i, sec := range h.Sections {
		ids := append([]string(nil), sec.QuestionIDs...)
		rand.Shuffle(len(ids), func(a, b int) { ids[a], ids[b] = ids[b], ids[a] })
		sec.QuestionIDs = ids
		view.Sections[i] = sec
	}
	return view
}

func countConsumed(sessions []models.AssessmentSession) int {
	n := 0
	for _, s := range sessions {
		if s.Result != nil {
			n++
		}
	}
	return n
}

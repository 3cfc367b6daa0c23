package session

import (
	"context"
	"sort"
	"testing"
	"time"

	"assessment-service/internal/apperr"
	"assessment-service/internal/models"
)

type fakeStore struct {
	sessions map[string]*models.AssessmentSession
	upserts  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*models.AssessmentSession{}}
}

func (f *fakeStore) GetSessions(ctx context.Context, userID, assessmentID string) ([]models.AssessmentSession, error) {
	var out []models.AssessmentSession
	for _, s := range f.sessions {
		if s.UserID == userID && s.AssessmentID == assessmentID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (f *fakeStore) UpsertSession(ctx context.Context, session *models.AssessmentSession) error {
	f.upserts++
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func testHierarchy(maxRetakes int) *models.Hierarchy {
	return &models.Hierarchy{
		ID:                "a1",
		AssessmentType:    models.QuestionWeightage,
		DurationSeconds:   3600,
		MaxRetakeAttempts: maxRetakes,
		Sections: []models.Section{
			{ID: "s1", Name: "Math", QuestionIDs: []string{"q1", "q2", "q3"}},
		},
		MarksPerLevel: map[string]float64{"Math|basic": 4},
	}
}

func testTracker(store Store, at time.Time) *Tracker {
	tr := NewTracker(store, 2*time.Minute)
	tr.now = func() time.Time { return at }
	return tr
}

func TestResolveCreatesFirstAttempt(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)

	attempt, err := tr.Resolve(context.Background(), "u1", testHierarchy(3))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if attempt.Status != models.SessionInProgress {
		t.Errorf("Expected in_progress, got %s", attempt.Status)
	}
	if !attempt.StartTime.Equal(now) {
		t.Errorf("Expected start %v, got %v", now, attempt.StartTime)
	}
	if !attempt.EndTime.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected end one hour later, got %v", attempt.EndTime)
	}
	if store.upserts != 1 {
		t.Errorf("Expected one upsert, got %d", store.upserts)
	}
	if attempt.Hierarchy.MarksPerLevel != nil {
		t.Error("Expected scoring config stripped from the issued view")
	}
}

func TestResolveIsIdempotentWithinWindow(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)

	first, err := tr.Resolve(context.Background(), "u1", testHierarchy(3))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	tr.now = func() time.Time { return now.Add(20 * time.Minute) }
	second, err := tr.Resolve(context.Background(), "u1", testHierarchy(3))
	if err != nil {
		t.Fatalf("Second resolve returned error: %v", err)
	}

	if second.ID != first.ID {
		t.Error("Expected the same attempt to be returned within the window")
	}
	if !second.StartTime.Equal(first.StartTime) || !second.EndTime.Equal(first.EndTime) {
		t.Error("Expected timestamps unchanged on re-read")
	}
	firstOrder := first.Hierarchy.Sections[0].QuestionIDs
	secondOrder := second.Hierarchy.Sections[0].QuestionIDs
	for i := range firstOrder {
		if firstOrder[i] != secondOrder[i] {
			t.Fatal("Expected identical question order on re-read, got a reshuffle")
		}
	}
	if store.upserts != 1 {
		t.Errorf("Expected no second upsert, got %d", store.upserts)
	}
}

func TestResolveRetakeAfterSubmit(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)
	h := testHierarchy(3)

	first, err := tr.Resolve(context.Background(), "u1", h)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if err := tr.Finalize(context.Background(), first, &models.AssessmentResult{}); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	tr.now = func() time.Time { return now.Add(5 * time.Minute) }
	second, err := tr.Resolve(context.Background(), "u1", h)
	if err != nil {
		t.Fatalf("Retake resolve returned error: %v", err)
	}
	if second.ID == first.ID {
		t.Error("Expected a fresh attempt after submit")
	}
	if !second.StartTime.Equal(now.Add(5 * time.Minute)) {
		t.Errorf("Expected new start time, got %v", second.StartTime)
	}
}

func TestResolveRetakeLimit(t *testing.T) {
	const maxRetakes = 2
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)
	h := testHierarchy(maxRetakes)

	// N reads with N terminal submissions must all succeed.
	for i := 0; i < maxRetakes; i++ {
		at := now.Add(time.Duration(i) * 2 * time.Hour)
		tr.now = func() time.Time { return at }
		attempt, err := tr.Resolve(context.Background(), "u1", h)
		if err != nil {
			t.Fatalf("Read %d failed: %v", i+1, err)
		}
		if err := tr.Finalize(context.Background(), attempt, &models.AssessmentResult{}); err != nil {
			t.Fatalf("Finalize %d failed: %v", i+1, err)
		}
	}

	// The (N+1)-th read fails.
	tr.now = func() time.Time { return now.Add(100 * time.Hour) }
	_, err := tr.Resolve(context.Background(), "u1", h)
	if err == nil {
		t.Fatal("Expected retake limit error")
	}
	if apperr.CodeOf(err) != apperr.CodeRetakeLimitExceeded {
		t.Errorf("Expected RETAKE_LIMIT_EXCEEDED, got %s", apperr.CodeOf(err))
	}
}

func TestResolveExpiredUnsubmittedDoesNotConsumeAttempt(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)
	h := testHierarchy(1)

	if _, err := tr.Resolve(context.Background(), "u1", h); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// Window elapses without a submit; a fresh attempt is still allowed.
	tr.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := tr.Resolve(context.Background(), "u1", h); err != nil {
		t.Fatalf("Expected expired unsubmitted attempt to be retakeable, got %v", err)
	}
}

func TestCheckSubmissionWindow(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)

	attempt := &models.AssessmentSession{EndTime: now.Add(time.Hour)}

	t.Run("inside window", func(t *testing.T) {
		tr.now = func() time.Time { return now.Add(59 * time.Minute) }
		if err := tr.CheckSubmissionWindow(attempt); err != nil {
			t.Errorf("Expected window open, got %v", err)
		}
	})

	t.Run("inside grace buffer", func(t *testing.T) {
		tr.now = func() time.Time { return now.Add(time.Hour + time.Minute) }
		if err := tr.CheckSubmissionWindow(attempt); err != nil {
			t.Errorf("Expected grace buffer to keep window open, got %v", err)
		}
	})

	t.Run("past grace buffer", func(t *testing.T) {
		tr.now = func() time.Time { return now.Add(time.Hour + 3*time.Minute) }
		err := tr.CheckSubmissionWindow(attempt)
		if apperr.CodeOf(err) != apperr.CodeSubmissionWindowExpired {
			t.Errorf("Expected SUBMISSION_WINDOW_EXPIRED, got %v", err)
		}
	})
}

func TestValidateIssued(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)

	attempt, err := tr.Resolve(context.Background(), "u1", testHierarchy(3))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	t.Run("subset of issued questions is valid", func(t *testing.T) {
		sub := &models.Submission{Sections: []models.SubmittedSection{
			{SectionID: "s1", Questions: []models.SubmittedQuestion{{QuestionID: "q2"}}},
		}}
		if err := tr.ValidateIssued(attempt, sub); err != nil {
			t.Errorf("Expected valid subset, got %v", err)
		}
	})

	t.Run("unknown question is rejected", func(t *testing.T) {
		sub := &models.Submission{Sections: []models.SubmittedSection{
			{SectionID: "s1", Questions: []models.SubmittedQuestion{{QuestionID: "q9"}}},
		}}
		err := tr.ValidateIssued(attempt, sub)
		if apperr.CodeOf(err) != apperr.CodeQuestionSetMismatch {
			t.Errorf("Expected QUESTION_SET_MISMATCH, got %v", err)
		}
	})

	t.Run("unknown section is rejected", func(t *testing.T) {
		sub := &models.Submission{Sections: []models.SubmittedSection{
			{SectionID: "s9"},
		}}
		err := tr.ValidateIssued(attempt, sub)
		if apperr.CodeOf(err) != apperr.CodeQuestionSetMismatch {
			t.Errorf("Expected QUESTION_SET_MISMATCH, got %v", err)
		}
	})

	t.Run("repeated question id is rejected", func(t *testing.T) {
		sub := &models.Submission{Sections: []models.SubmittedSection{
			{SectionID: "s1", Questions: []models.SubmittedQuestion{
				{QuestionID: "q1"},
				{QuestionID: "q1"},
			}},
		}}
		err := tr.ValidateIssued(attempt, sub)
		if apperr.CodeOf(err) != apperr.CodeQuestionSetMismatch {
			t.Errorf("Expected QUESTION_SET_MISMATCH for repeated question, got %v", err)
		}
	})

	t.Run("repeated section id is rejected", func(t *testing.T) {
		sub := &models.Submission{Sections: []models.SubmittedSection{
			{SectionID: "s1", Questions: []models.SubmittedQuestion{{QuestionID: "q1"}}},
			{SectionID: "s1", Questions: []models.SubmittedQuestion{{QuestionID: "q2"}}},
		}}
		err := tr.ValidateIssued(attempt, sub)
		if apperr.CodeOf(err) != apperr.CodeQuestionSetMismatch {
			t.Errorf("Expected QUESTION_SET_MISMATCH for repeated section, got %v", err)
		}
	})
}

func TestSaveDraft(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)
	h := testHierarchy(3)

	attempt, err := tr.Resolve(context.Background(), "u1", h)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	sections := []models.SubmittedSection{{SectionID: "s1"}}

	t.Run("draft saves on the open attempt", func(t *testing.T) {
		saved, err := tr.SaveDraft(context.Background(), "u1", "a1", sections)
		if err != nil {
			t.Fatalf("SaveDraft returned error: %v", err)
		}
		if saved.Draft == nil {
			t.Fatal("Expected draft stored")
		}
		if saved.Status != models.SessionInProgress {
			t.Errorf("Expected status untouched, got %s", saved.Status)
		}
		if !saved.EndTime.Equal(attempt.EndTime) {
			t.Error("Expected timers untouched by draft save")
		}
	})

	t.Run("draft rejected after the window", func(t *testing.T) {
		tr.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := tr.SaveDraft(context.Background(), "u1", "a1", sections)
		if apperr.CodeOf(err) != apperr.CodeSessionNotActive {
			t.Errorf("Expected SESSION_NOT_ACTIVE, got %v", err)
		}
	})

	t.Run("draft rejected after submit", func(t *testing.T) {
		tr.now = func() time.Time { return now }
		if err := tr.Finalize(context.Background(), attempt, &models.AssessmentResult{}); err != nil {
			t.Fatalf("Finalize returned error: %v", err)
		}
		_, err := tr.SaveDraft(context.Background(), "u1", "a1", sections)
		if apperr.CodeOf(err) != apperr.CodeSessionNotActive {
			t.Errorf("Expected SESSION_NOT_ACTIVE, got %v", err)
		}
	})
}

func TestFinalizePersistsTerminalState(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tr := testTracker(store, now)

	attempt, err := tr.Resolve(context.Background(), "u1", testHierarchy(3))
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	result := &models.AssessmentResult{Pass: true}
	if err := tr.Finalize(context.Background(), attempt, result); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	stored := store.sessions[attempt.ID]
	if stored.Status != models.SessionSubmitted {
		t.Errorf("Expected submitted status, got %s", stored.Status)
	}
	if stored.Result == nil || !stored.Result.Pass {
		t.Error("Expected result persisted on the attempt")
	}
	if stored.SubmittedAt == nil {
		t.Error("Expected submitted_at set")
	}
}

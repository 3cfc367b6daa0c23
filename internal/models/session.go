package models

import "time"

const (
	SessionNotStarted = "not_started"
	SessionInProgress = "in_progress"
	SessionSubmitted  = "submitted"
)

// AssessmentSession is one attempt of (user, assessment). At most one
// non-terminal attempt exists per key; a new attempt may only be created
// once the previous one is submitted or its window has elapsed.
type AssessmentSession struct {
	ID           string `bson:"_id,omitempty" json:"id"`
	UserID       string `bson:"user_id" json:"user_id"`
	AssessmentID string `bson:"assessment_id" json:"assessment_id"`
	Status       string `bson:"status" json:"status"`

	StartTime time.Time `bson:"start_time" json:"start_time"`
	EndTime   time.Time `bson:"end_time" json:"end_time"`

	// Hierarchy is the filtered, shuffled view issued to the user for this
	// attempt. Reads within the window return it verbatim.
	Hierarchy Hierarchy `bson:"hierarchy" json:"hierarchy"`

	Draft *SavePoint `bson:"draft,omitempty" json:"draft,omitempty"`

	// Result is non-nil only for terminal attempts; a non-nil Result is
	// what counts as a consumed retake attempt.
	Result      *AssessmentResult `bson:"result,omitempty" json:"result,omitempty"`
	SubmittedAt *time.Time        `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Expired reports whether the attempt window has elapsed at the given time.
func (s *AssessmentSession) Expired(now time.Time) bool {
	return !now.Before(s.EndTime)
}

// Terminal reports whether the attempt can no longer accept submissions
// without the grace buffer applied.
func (s *AssessmentSession) Terminal(now time.Time) bool {
	return s.Status == SessionSubmitted || s.Expired(now)
}

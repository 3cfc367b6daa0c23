package models

import "time"

// SubmittedOption mirrors Option on the response side: Selected marks a
// chosen row for choice types, SelectedValue carries the paired value for
// match rows and the typed text for fill-in-blank.
type SubmittedOption struct {
	Index         int    `bson:"index" json:"index"`
	Selected      bool   `bson:"selected" json:"selected"`
	SelectedValue string `bson:"selected_value,omitempty" json:"selected_value,omitempty"`
}

type SubmittedQuestion struct {
	QuestionID string            `bson:"question_id" json:"question_id"`
	Options    []SubmittedOption `bson:"options" json:"options"`
}

type SubmittedSection struct {
	SectionID string              `bson:"section_id" json:"section_id"`
	Questions []SubmittedQuestion `bson:"questions" json:"questions"`
}

// Submission is the full response body of a submit (or the payload of a
// draft save). Completion time is stamped server-side on submit, never
// taken from the payload.
type Submission struct {
	Sections []SubmittedSection `bson:"sections" json:"sections"`
}

// SavePoint is an in-progress draft persisted on the open attempt.
type SavePoint struct {
	Sections []SubmittedSection `bson:"sections" json:"sections"`
	SavedAt  time.Time          `bson:"saved_at" json:"saved_at"`
}

package models

import "time"

type QuestionOutcome string

const (
	OutcomeCorrect   QuestionOutcome = "correct"
	OutcomeIncorrect QuestionOutcome = "incorrect"
	OutcomeBlank     QuestionOutcome = "blank"
)

type QuestionResult struct {
	QuestionID   string          `bson:"question_id" json:"question_id"`
	Outcome      QuestionOutcome `bson:"outcome" json:"outcome"`
	MarksAwarded float64         `bson:"marks_awarded" json:"marks_awarded"`
}

type SectionResult struct {
	SectionID string `bson:"section_id" json:"section_id"`
	Name      string `bson:"name" json:"name"`
	Correct   int    `bson:"correct" json:"correct"`
	Incorrect int    `bson:"incorrect" json:"incorrect"`
	Blank     int    `bson:"blank" json:"blank"`
	Total     int    `bson:"total" json:"total"`
	// Result is the section percentage; the denominator includes blanks.
	Result       float64          `bson:"result" json:"result"`
	SectionMarks float64          `bson:"section_marks" json:"section_marks"`
	TotalMarks   float64          `bson:"total_marks" json:"total_marks"`
	Pass         bool             `bson:"pass" json:"pass"`
	Questions    []QuestionResult `bson:"questions" json:"questions"`
}

type AssessmentResult struct {
	AssessmentID string          `bson:"assessment_id" json:"assessment_id"`
	UserID       string          `bson:"user_id" json:"user_id"`
	Sections     []SectionResult `bson:"sections" json:"sections"`
	Correct      int             `bson:"correct" json:"correct"`
	Incorrect    int             `bson:"incorrect" json:"incorrect"`
	Blank        int             `bson:"blank" json:"blank"`
	// OverallResult under the section-cutoff mode excludes blanks from the
	// denominator, unlike the per-section Result. Kept that way on purpose.
	OverallResult            float64   `bson:"overall_result" json:"overall_result"`
	TotalPercentage          float64   `bson:"total_percentage" json:"total_percentage"`
	Pass                     bool      `bson:"pass" json:"pass"`
	TimeTakenSeconds         int       `bson:"time_taken_seconds" json:"time_taken_seconds"`
	MaxRetakeAttemptsAllowed int       `bson:"max_retake_attempts_allowed" json:"max_retake_attempts_allowed"`
	RetakeAttemptsConsumed   int       `bson:"retake_attempts_consumed" json:"retake_attempts_consumed"`
	CompletedAt              time.Time `bson:"completed_at" json:"completed_at"`
}

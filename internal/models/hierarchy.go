package models

const (
	CategoryRegular  = "regular"
	CategoryPractice = "practice"
)

const (
	OptionWeightage   = "option_weightage"
	QuestionWeightage = "question_weightage"
)

type Section struct {
	ID             string   `bson:"id" json:"id"`
	Name           string   `bson:"name" json:"name"`
	QuestionIDs    []string `bson:"question_ids" json:"question_ids"`
	PassPercentage float64  `bson:"pass_percentage" json:"pass_percentage"`
	TotalMarks     float64  `bson:"total_marks" json:"total_marks"`
}

// Hierarchy is the assessment definition fetched from the content side.
// It is read-only for this service; sessions store a filtered snapshot of it.
type Hierarchy struct {
	ID                    string    `bson:"_id,omitempty" json:"id"`
	Title                 string    `bson:"title" json:"title"`
	PrimaryCategory       string    `bson:"primary_category" json:"primary_category"`
	AssessmentType        string    `bson:"assessment_type" json:"assessment_type"`
	Sections              []Section `bson:"sections" json:"sections"`
	DurationSeconds       int       `bson:"duration_seconds" json:"duration_seconds"`
	MaxRetakeAttempts     int       `bson:"max_retake_attempts" json:"max_retake_attempts"`
	NegativeMarkingPct    float64   `bson:"negative_marking_pct" json:"negative_marking_pct"`
	MinimumPassPercentage float64   `bson:"minimum_pass_percentage" json:"minimum_pass_percentage"`
	// MarksPerLevel maps "<sectionName>|<level>" to the marks a correct
	// answer earns under the question-weightage scheme.
	MarksPerLevel map[string]float64 `bson:"marks_per_level,omitempty" json:"marks_per_level,omitempty"`
	// OptionWeights maps question id to option index (decimal string, Mongo
	// map keys must be strings) to the option's weight.
	OptionWeights map[string]map[string]float64 `bson:"option_weights,omitempty" json:"option_weights,omitempty"`
}

func (h *Hierarchy) IsPractice() bool {
	return h.PrimaryCategory == CategoryPractice
}

package models

type QuestionType string

const (
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultiChoice    QuestionType = "multi_choice"
	TypeMatchFollowing QuestionType = "match_following"
	TypeFillBlank      QuestionType = "fill_blank"
)

// Option is one row of a question. Which fields matter depends on the
// question type: choice types use Correct, match rows pair Index with
// SelectedValue, fill-in-blank stores the expected text in Value.
type Option struct {
	Index         int     `bson:"index" json:"index"`
	Value         string  `bson:"value" json:"value"`
	Correct       bool    `bson:"correct" json:"correct"`
	SelectedValue string  `bson:"selected_value,omitempty" json:"selected_value,omitempty"`
	Weight        float64 `bson:"weight,omitempty" json:"weight,omitempty"`
}

type Question struct {
	ID      string       `bson:"_id,omitempty" json:"id"`
	Content string       `bson:"content" json:"content"`
	Type    QuestionType `bson:"type" json:"type"`
	Options []Option     `bson:"options" json:"options"`
	// Proficiency level, used by the question-weightage mark lookup.
	Level string `bson:"level,omitempty" json:"level,omitempty"`
}

// Sanitized returns a copy safe to hand to a test taker: correctness flags,
// match pairings, fill-in answers and option weights are stripped.
func (q Question) Sanitized() Question {
	opts := make([]Option, len(q.Options))
	for i, opt := range q.Options {
		opt.Correct = false
		opt.Weight = 0
		if q.Type == TypeMatchFollowing {
			opt.SelectedValue = ""
		}
		if q.Type == TypeFillBlank {
			opt.Value = ""
		}
		opts[i] = opt
	}
	q.Options = opts
	return q
}

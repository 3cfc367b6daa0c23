package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"assessment-service/internal/models"
)

// ErrUnsupportedQuestionType is returned for a question type outside the
// closed set. Callers treat the affected question as blank instead of
// aborting the batch.
type ErrUnsupportedQuestionType struct {
	Type models.QuestionType
}

func (e *ErrUnsupportedQuestionType) Error() string {
	return fmt.Sprintf("unsupported question type %q", e.Type)
}

// AnswerKey produces the canonical correct-answer tokens for a question.
//
//   - single/multi choice: the index of every option flagged correct
//   - match-the-following: "<index>-<pairedValue lowercased>" per row
//   - fill-in-blank: the expected text of every option flagged correct
func AnswerKey(q *models.Question) ([]string, error) {
	switch q.Type {
	case models.TypeSingleChoice, models.TypeMultiChoice:
		var tokens []string
		for _, opt := range q.Options {
			if opt.Correct {
				tokens = append(tokens, strconv.Itoa(opt.Index))
			}
		}
		return tokens, nil
	case models.TypeMatchFollowing:
		var tokens []string
		for _, opt := range q.Options {
			tokens = append(tokens, matchToken(opt.Index, opt.SelectedValue))
		}
		return tokens, nil
	case models.TypeFillBlank:
		var tokens []string
		for _, opt := range q.Options {
			if opt.Correct {
				tokens = append(tokens, opt.Value)
			}
		}
		return tokens, nil
	default:
		return nil, &ErrUnsupportedQuestionType{Type: q.Type}
	}
}

// MarkResponse extracts the submitted tokens for a question in the same
// token space as AnswerKey. An empty return means the question is blank.
// Fill-in-blank text is taken exactly as submitted; comparison against the
// key is case-sensitive.
func MarkResponse(q *models.Question, submitted []models.SubmittedOption) ([]string, error) {
	if len(submitted) == 0 {
		return nil, nil
	}
	switch q.Type {
	case models.TypeSingleChoice, models.TypeMultiChoice:
		var tokens []string
		for _, opt := range submitted {
			if opt.Selected {
				tokens = append(tokens, strconv.Itoa(opt.Index))
			}
		}
		return tokens, nil
	case models.TypeMatchFollowing:
		var tokens []string
		for _, opt := range submitted {
			if opt.SelectedValue != "" {
				tokens = append(tokens, matchToken(opt.Index, opt.SelectedValue))
			}
		}
		return tokens, nil
	case models.TypeFillBlank:
		var tokens []string
		for _, opt := range submitted {
			if opt.SelectedValue != "" {
				tokens = append(tokens, opt.SelectedValue)
			}
		}
		return tokens, nil
	default:
		return nil, &ErrUnsupportedQuestionType{Type: q.Type}
	}
}

func matchToken(index int, value string) string {
	return fmt.Sprintf("%d-%s", index, strings.ToLower(value))
}

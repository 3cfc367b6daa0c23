package scoring

import (
	"sort"
	"strconv"

	"assessment-service/internal/models"
)

// Engine compares marked responses against answer keys and accumulates
// section marks under the hierarchy's weighting scheme.
type Engine struct {
	scheme        string
	negativePct   float64
	marksPerLevel map[string]float64
	optionWeights map[string]map[string]float64
}

func NewEngine(h *models.Hierarchy) *Engine {
	return &Engine{
		scheme:        h.AssessmentType,
		negativePct:   h.NegativeMarkingPct,
		marksPerLevel: h.MarksPerLevel,
		optionWeights: h.OptionWeights,
	}
}

// SectionTally accumulates outcomes and marks for one section.
type SectionTally struct {
	Correct   int
	Incorrect int
	Blank     int
	Marks     float64
}

// ScoreQuestion classifies a single question as correct, incorrect or blank
// and updates the tally. Any extraction failure on a malformed question
// counts it blank rather than failing the submission.
func (e *Engine) ScoreQuestion(q *models.Question, sectionName string, submitted []models.SubmittedOption, tally *SectionTally) models.QuestionResult {
	res := models.QuestionResult{QuestionID: q.ID, Outcome: models.OutcomeBlank}

	key, err := AnswerKey(q)
	if err != nil {
		tally.Blank++
		return res
	}
	marked, err := MarkResponse(q, submitted)
	if err != nil {
		tally.Blank++
		return res
	}
	if len(marked) == 0 {
		tally.Blank++
		return res
	}

	if tokensEqual(key, marked) {
		tally.Correct++
		res.Outcome = models.OutcomeCorrect
	} else {
		tally.Incorrect++
		res.Outcome = models.OutcomeIncorrect
	}

	switch e.scheme {
	case models.QuestionWeightage:
		marks := e.marksPerLevel[sectionName+"|"+q.Level]
		if res.Outcome == models.OutcomeCorrect {
			tally.Marks += marks
			res.MarksAwarded = marks
		} else if e.negativePct > 0 {
			// Section marks may go negative; no floor.
			tally.Marks -= marks
			res.MarksAwarded = -marks
		}
	case models.OptionWeightage:
		// Option weights are summed for every selected option, independent
		// of the correct/incorrect judgment.
		weights := e.optionWeights[q.ID]
		var earned float64
		for _, opt := range submitted {
			if opt.Selected {
				earned += weights[strconv.Itoa(opt.Index)]
			}
		}
		tally.Marks += earned
		res.MarksAwarded = earned
	}

	return res
}

// ScoreSection scores every submitted question of a section. Each question
// id is scored at most once; repeats after the first entry are ignored.
// Questions the section issued but the user never submitted at all count as
// additional blanks.
func (e *Engine) ScoreSection(section *models.Section, questions map[string]models.Question, submitted []models.SubmittedQuestion) models.SectionResult {
	var tally SectionTally
	results := make([]models.QuestionResult, 0, len(submitted))

	seen := make(map[string]bool, len(submitted))
	for _, sq := range submitted {
		if seen[sq.QuestionID] {
			continue
		}
		seen[sq.QuestionID] = true
		q, ok := questions[sq.QuestionID]
		if !ok {
			tally.Blank++
			results = append(results, models.QuestionResult{QuestionID: sq.QuestionID, Outcome: models.OutcomeBlank})
			continue
		}
		results = append(results, e.ScoreQuestion(&q, section.Name, sq.Options, &tally))
	}

	if skipped := len(section.QuestionIDs) - len(seen); skipped > 0 {
		tally.Blank += skipped
	}

	total := tally.Correct + tally.Incorrect + tally.Blank
	out := models.SectionResult{
		SectionID:    section.ID,
		Name:         section.Name,
		Correct:      tally.Correct,
		Incorrect:    tally.Incorrect,
		Blank:        tally.Blank,
		Total:        total,
		Result:       Percentage(tally.Correct, total),
		SectionMarks: tally.Marks,
		TotalMarks:   section.TotalMarks,
		Pass:         Percentage(tally.Correct, total) >= section.PassPercentage,
		Questions:    results,
	}
	return out
}

// Percentage returns correct*100/total, or 0 for an empty total.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) * 100.0 / float64(total)
}

func tokensEqual(key, marked []string) bool {
	if len(key) != len(marked) {
		return false
	}
	a := append([]string(nil), key...)
	b := append([]string(nil), marked...)
	sort.Strings(a)
	sort.Strings(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package scoring

import (
	"time"

	"assessment-service/internal/models"
)

// RetakeInfo is passed through onto the final result.
type RetakeInfo struct {
	MaxAllowed int
	Consumed   int
}

// Aggregate rolls section results into the assessment-level result. The
// shape depends on the weighting scheme:
//
//   - option-weightage: one virtual section spans the assessment and its
//     result is wrapped directly; pass compares against the minimum pass
//     percentage.
//   - question-weightage: every section must pass individually. The
//     combined percentage here divides by correct+incorrect only, while
//     each section's own result divides by correct+incorrect+blank. The
//     asymmetry is intentional and covered by tests.
func Aggregate(h *models.Hierarchy, sections []models.SectionResult, startTime, completedAt time.Time, retake RetakeInfo) *models.AssessmentResult {
	out := &models.AssessmentResult{
		AssessmentID:             h.ID,
		Sections:                 sections,
		TimeTakenSeconds:         int(completedAt.Sub(startTime).Seconds()),
		MaxRetakeAttemptsAllowed: retake.MaxAllowed,
		RetakeAttemptsConsumed:   retake.Consumed,
		CompletedAt:              completedAt,
	}

	for _, s := range sections {
		out.Correct += s.Correct
		out.Incorrect += s.Incorrect
		out.Blank += s.Blank
	}

	switch h.AssessmentType {
	case models.OptionWeightage:
		if len(sections) > 0 {
			s := sections[0]
			out.OverallResult = s.Result
			if s.TotalMarks > 0 {
				out.TotalPercentage = s.SectionMarks / s.TotalMarks * 100.0
			}
		}
		out.Pass = out.OverallResult >= h.MinimumPassPercentage
	case models.QuestionWeightage:
		answered := out.Correct + out.Incorrect
		if answered > 0 {
			out.OverallResult = float64(out.Correct) * 100.0 / float64(answered)
		}
		var marks, totalMarks float64
		passed := 0
		for _, s := range sections {
			marks += s.SectionMarks
			totalMarks += s.TotalMarks
			if s.Pass {
				passed++
			}
		}
		if totalMarks > 0 {
			out.TotalPercentage = marks / totalMarks * 100.0
		}
		out.Pass = passed == len(sections) && len(sections) > 0
	}

	return out
}

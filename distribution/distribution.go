
package distribution

import (
	"math"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

// ComputeTargets validates a generation request and returns its aggregate
// targets. The same arithmetic backs both the generation path and analytics,
// so the two can never disagree on what a request costs.
func ComputeTargets(req models.GenerationRequest) (models.Targets, error) {
	if len(req.Categories) == 0 {
		return models.Targets{}, apperr.Validationf("at least one question category is required")
	}
	for _, spec := range req.Categories {
		if spec.Count < 0 {
			return models.Targets{}, apperr.Validationf("category %s has negative count %d", spec.Category, spec.Count)
		}
		if spec.MarksEach < 0 {
			return models.Targets{}, apperr.Validationf("category %s has negative marks %d", spec.Category, spec.MarksEach)
		}
	}
	if sum := req.Provenance.Sum(); sum != 100 {
		return models.Targets{}, apperr.Validationf("source percentages must sum to 100, got %d", sum)
	}
	targets := models.Targets{
		TotalMarks:     req.TotalMarks(),
		TotalQuestions: req.TotalQuestions(),
	}
	if targets.TotalQuestions == 0 {
		return models.Targets{}, apperr.Validationf("request asks for zero questions")
	}
	if targets.TotalMarks <= 0 {
		return models.Targets{}, apperr.Validationf("request totals %d marks; must be positive", targets.TotalMarks)
	}
	return targets, nil
}

// ComputeRealized groups a question list into its realized distribution.
// Every question lands in exactly one bucket of each dimension, so each
// dimension's counts sum back to len(questions).
func ComputeRealized(questions []models.Question) models.DistributionSummary {
	summary := models.DistributionSummary{
		TotalQuestions:    len(questions),
		ByCategory:        make(map[models.QuestionCategory]int),
		MarksByCategory:   make(map[models.QuestionCategory]int),
		ByCognitiveLevel:  make(map[string]int),
		ByProvenance:      make(map[models.Provenance]int),
		ByLevelProvenance: make(map[string]map[models.Provenance]int),
	}
	for _, q := range questions {
		summary.ByCategory[q.Category]++
		summary.MarksByCategory[q.Category] += q.Marks
		summary.ByCognitiveLevel[q.CognitiveLevel]++
		summary.ByProvenance[q.Provenance]++
		if summary.ByLevelProvenance[q.CognitiveLevel] == nil {
			summary.ByLevelProvenance[q.CognitiveLevel] = make(map[models.Provenance]int)
		}
		summary.ByLevelProvenance[q.CognitiveLevel][q.Provenance]++
	}
	return summary
}

// Percent reports count/total as a percentage rounded to one decimal place.
// A zero total yields 0, never an error.
func Percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}

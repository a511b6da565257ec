
package distribution

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

func request(prev, creative, fresh int, specs ...models.QuestionSpec) models.GenerationRequest {
	return models.GenerationRequest{
		Subject:    "Operating Systems",
		Department: "CSE",
		ExamType:   models.ExamFinal,
		Categories: specs,
		Provenance: models.ProvenanceRatio{PreviousPercent: prev, CreativePercent: creative, NewPercent: fresh},
	}
}

func TestComputeTargets(t *testing.T) {
	targets, err := ComputeTargets(request(50, 0, 50,
		models.QuestionSpec{Category: models.CategoryMCQ, Count: 10, MarksEach: 1},
		models.QuestionSpec{Category: models.CategoryShort, Count: 5, MarksEach: 2},
	))
	require.NoError(t, err)
	assert.Equal(t, 20, targets.TotalMarks)
	assert.Equal(t, 15, targets.TotalQuestions)
}

func TestComputeTargetsRatioMustSumTo100(t *testing.T) {
	_, err := ComputeTargets(request(30, 30, 30,
		models.QuestionSpec{Category: models.CategoryMCQ, Count: 10, MarksEach: 1},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// Any sum of exactly 100 passes, including degenerate splits.
	for _, ratio := range []models.ProvenanceRatio{
		{PreviousPercent: 100},
		{CreativePercent: 100},
		{NewPercent: 100},
		{PreviousPercent: 33, CreativePercent: 33, NewPercent: 34},
	} {
		req := request(ratio.PreviousPercent, ratio.CreativePercent, ratio.NewPercent,
			models.QuestionSpec{Category: models.CategoryLong, Count: 2, MarksEach: 10},
		)
		_, err := ComputeTargets(req)
		assert.NoError(t, err, "ratio %+v", ratio)
	}
}

func TestComputeTargetsRejectsZeroQuestions(t *testing.T) {
	_, err := ComputeTargets(request(30, 40, 30,
		models.QuestionSpec{Category: models.CategoryMCQ, Count: 0, MarksEach: 1},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestComputeTargetsRejectsZeroMarks(t *testing.T) {
	_, err := ComputeTargets(request(30, 40, 30,
		models.QuestionSpec{Category: models.CategoryShort, Count: 5, MarksEach: 0},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestComputeTargetsRejectsNegativeCounts(t *testing.T) {
	_, err := ComputeTargets(request(30, 40, 30,
		models.QuestionSpec{Category: models.CategoryMCQ, Count: -1, MarksEach: 1},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func sampleQuestions() []models.Question {
	return []models.Question{
		{Text: "q1", Category: models.CategoryMCQ, CognitiveLevel: "Remember", Marks: 1, Provenance: models.ProvenancePrevious},
		{Text: "q2", Category: models.CategoryMCQ, CognitiveLevel: "Understand", Marks: 1, Provenance: models.ProvenanceNew},
		{Text: "q3", Category: models.CategoryShort, CognitiveLevel: "Apply", Marks: 2, Provenance: models.ProvenanceCreative},
		{Text: "q4", Category: models.CategoryLong, CognitiveLevel: "Analyze", Marks: 10, Provenance: models.ProvenanceNew},
		{Text: "q5", Category: models.CategoryLong, CognitiveLevel: "Analyze", Marks: 10, Provenance: models.ProvenanceNew},
	}
}

func TestComputeRealizedPartitionsEveryDimension(t *testing.T) {
	questions := sampleQuestions()
	summary := ComputeRealized(questions)

	assert.Equal(t, len(questions), summary.TotalQuestions)

	byCategory := 0
	for _, n := range summary.ByCategory {
		byCategory += n
	}
	assert.Equal(t, len(questions), byCategory)

	byLevel := 0
	for _, n := range summary.ByCognitiveLevel {
		byLevel += n
	}
	assert.Equal(t, len(questions), byLevel)

	bySource := 0
	for _, n := range summary.ByProvenance {
		bySource += n
	}
	assert.Equal(t, len(questions), bySource)

	byPair := 0
	for _, sources := range summary.ByLevelProvenance {
		for _, n := range sources {
			byPair += n
		}
	}
	assert.Equal(t, len(questions), byPair)
}

func TestComputeRealizedCountsAndMarks(t *testing.T) {
	summary := ComputeRealized(sampleQuestions())

	assert.Equal(t, 2, summary.ByCategory[models.CategoryMCQ])
	assert.Equal(t, 2, summary.ByCategory[models.CategoryLong])
	assert.Equal(t, 20, summary.MarksByCategory[models.CategoryLong])
	assert.Equal(t, 2, summary.ByCognitiveLevel["Analyze"])
	assert.Equal(t, 3, summary.ByProvenance[models.ProvenanceNew])
	assert.Equal(t, 2, summary.ByLevelProvenance["Analyze"][models.ProvenanceNew])
}

func TestComputeRealizedEmptyInput(t *testing.T) {
	summary := ComputeRealized(nil)
	assert.Equal(t, 0, summary.TotalQuestions)
	assert.Empty(t, summary.ByCategory)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))
	assert.Equal(t, 100.0, Percent(7, 7))
}

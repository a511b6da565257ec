package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

type fakeSummarizer struct {
	reply string
	err   error
	seen  string
}

func (s *fakeSummarizer) Analyze(ctx context.Context, prompt string) (string, error) {
	s.seen = prompt
	return s.reply, s.err
}

func paperFixture(id, subject, department string, marks int, questions ...models.Question) models.Paper {
	return models.Paper{
		ID:         id,
		OwnerID:    "t1",
		Subject:    subject,
		Department: department,
		TotalMarks: marks,
		Status:     models.StatusApproved,
		Questions:  questions,
	}
}

func q(cat models.QuestionCategory, level string, source models.Provenance, marks int) models.Question {
	return models.Question{
		Text:           "sample",
		Category:       cat,
		CognitiveLevel: level,
		Provenance:     source,
		Marks:          marks,
	}
}

func TestSummarizeAggregates(t *testing.T) {
	papers := []models.Paper{
		paperFixture("a", "OS", "CSE", 20,
			q(models.CategoryMCQ, "Remember", models.ProvenancePrevious, 1),
			q(models.CategoryMCQ, "Understand", models.ProvenanceCreative, 1),
			q(models.CategoryShort, "Analyze", models.ProvenanceNew, 3)),
		paperFixture("b", "DBMS", "IT", 30,
			q(models.CategoryLong, "Evaluate", models.ProvenanceCreative, 10)),
	}

	s, err := NewEngine(nil).Summarize(context.Background(), papers, "")
	require.NoError(t, err)

	assert.Equal(t, 2, s.TotalPapers)
	assert.Equal(t, 4, s.TotalQuestions)
	assert.Equal(t, 25.0, s.AverageMarks)
	assert.Equal(t, map[string]int{"OS": 1, "DBMS": 1}, s.SubjectDistribution)
	assert.Equal(t, map[string]int{"CSE": 1, "IT": 1}, s.DepartmentDistribution)
	assert.Equal(t, 2, s.QuestionTypeDistribution[models.CategoryMCQ])
	assert.Equal(t, 2, s.SourceDistribution[models.ProvenanceCreative])
	assert.Equal(t, 1, s.BloomsLevelDistribution["Analyze"])
	assert.NotEmpty(t, s.Insights)
	assert.NotEmpty(t, s.Suggestions)
	assert.Empty(t, s.CustomAnalysis)
}

func TestSummarizeAverageMarksRounding(t *testing.T) {
	papers := []models.Paper{
		paperFixture("a", "OS", "CSE", 10, q(models.CategoryMCQ, "Remember", models.ProvenanceNew, 1)),
		paperFixture("b", "OS", "CSE", 10, q(models.CategoryMCQ, "Remember", models.ProvenanceNew, 1)),
		paperFixture("c", "OS", "CSE", 15, q(models.CategoryMCQ, "Remember", models.ProvenanceNew, 1)),
	}
	s, err := NewEngine(nil).Summarize(context.Background(), papers, "")
	require.NoError(t, err)
	assert.Equal(t, 11.67, s.AverageMarks)
}

func TestSummarizeEmptySet(t *testing.T) {
	s, err := NewEngine(nil).Summarize(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.TotalPapers)
	assert.Equal(t, 0.0, s.AverageMarks)
	assert.Empty(t, s.Insights)
	assert.Equal(t, []string{"Approve some papers to unlock analytics"}, s.Suggestions)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	papers := []models.Paper{
		paperFixture("a", "OS", "CSE", 20,
			q(models.CategoryMCQ, "Remember", models.ProvenancePrevious, 1),
			q(models.CategoryShort, "Analyze", models.ProvenanceNew, 3)),
		paperFixture("b", "DBMS", "IT", 30,
			q(models.CategoryLong, "Evaluate", models.ProvenanceCreative, 10)),
		paperFixture("c", "CN", "CSE", 40,
			q(models.CategoryMedium, "Apply", models.ProvenanceCreative, 5)),
	}
	reversed := []models.Paper{papers[2], papers[1], papers[0]}

	e := NewEngine(nil)
	s1, err := e.Summarize(context.Background(), papers, "")
	require.NoError(t, err)
	s2, err := e.Summarize(context.Background(), reversed, "")
	require.NoError(t, err)
	assert.Equal(t, s1, s2)

	again, err := e.Summarize(context.Background(), papers, "")
	require.NoError(t, err)
	assert.Equal(t, s1, again)
}

func TestSummarizeCustomAnalysis(t *testing.T) {
	sum := &fakeSummarizer{reply: "The pool skews toward recall."}
	papers := []models.Paper{
		paperFixture("a", "OS", "CSE", 20, q(models.CategoryMCQ, "Remember", models.ProvenanceNew, 1)),
	}

	s, err := NewEngine(sum).Summarize(context.Background(), papers, "How is the Bloom's spread?")
	require.NoError(t, err)
	assert.Equal(t, "The pool skews toward recall.", s.CustomAnalysis)
	assert.Contains(t, sum.seen, "How is the Bloom's spread?")

	sum.err = errors.New("quota exceeded")
	_, err = NewEngine(sum).Summarize(context.Background(), papers, "anything")
	require.ErrorIs(t, err, apperr.ErrGeneration)
}

func TestDashboardCounts(t *testing.T) {
	draft := paperFixture("d", "OS", "CSE", 20)
	draft.Status = models.StatusDraft
	papers := []models.Paper{
		paperFixture("a", "OS", "CSE", 20),
		paperFixture("b", "DBMS", "IT", 30),
		draft,
	}

	d := NewEngine(nil).Dashboard(context.Background(), papers)
	assert.Equal(t, 3, d.TotalPapers)
	assert.Equal(t, 2, d.ApprovedPapers)
	assert.Equal(t, 1, d.DraftPapers)
	assert.Equal(t, 2, d.UniqueSubjects)
	assert.Equal(t, 2, d.UniqueDepartments)
	assert.Len(t, d.RecentPapers, 3)
}

func TestDashboardSummarizerFailureDegrades(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("down")}
	d := NewEngine(sum).Dashboard(context.Background(), []models.Paper{paperFixture("a", "OS", "CSE", 20)})
	assert.Empty(t, d.Summary)
	assert.Equal(t, 1, d.TotalPapers)
}

func TestPaperSuggestionsRequiresSummarizer(t *testing.T) {
	p := paperFixture("a", "OS", "CSE", 20, q(models.CategoryMCQ, "Remember", models.ProvenanceNew, 1))

	_, err := NewEngine(nil).PaperSuggestions(context.Background(), &p, nil)
	require.ErrorIs(t, err, apperr.ErrGeneration)

	sum := &fakeSummarizer{reply: "Add more application-level questions."}
	text, err := NewEngine(sum).PaperSuggestions(context.Background(), &p, nil)
	require.NoError(t, err)
	assert.Equal(t, "Add more application-level questions.", text)
	assert.Contains(t, sum.seen, "OS")
}

package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

func testPaper() *models.Paper {
	return &models.Paper{
		ID:         "paper-1",
		Subject:    "Operating Systems",
		Department: "CSE",
		Section:    "A",
		Year:       3,
		ExamType:   models.ExamMid,
		TotalMarks: 20,
		Questions: []models.Question{
			{
				Text:           "Which syscall creates a new process?",
				AnswerKey:      "fork",
				Category:       models.CategoryMCQ,
				CognitiveLevel: "Remember",
				Marks:          1,
				Options:        []string{"A) exec", "B) fork", "C) wait", "D) kill"},
				CorrectAnswer:  "B",
			},
			{
				Text:           "Explain context switching.",
				AnswerKey:      "Saving and restoring CPU state between processes.",
				Explanation:    "The kernel saves registers and the PC of the outgoing process.",
				Category:       models.CategoryShort,
				CognitiveLevel: "Understand",
				Marks:          3,
			},
		},
	}
}

func TestRenderBothVariants(t *testing.T) {
	store := NewMemoryStore()
	r := NewPDF(store, "")
	ctx := context.Background()
	p := testPaper()

	qpID, err := r.Render(ctx, p, models.VariantQuestionsOnly)
	require.NoError(t, err)
	akID, err := r.Render(ctx, p, models.VariantWithAnswers)
	require.NoError(t, err)
	assert.NotEqual(t, qpID, akID)

	qp, err := store.Get(ctx, qpID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", qp.ContentType)
	assert.Equal(t, "paper-1", qp.PaperID)
	assert.Equal(t, "operating_systems_Mid_question_paper.pdf", qp.Name)
	assert.Greater(t, len(qp.Data), 500)
	assert.Equal(t, "%PDF", string(qp.Data[:4]))

	ak, err := store.Get(ctx, akID)
	require.NoError(t, err)
	assert.Equal(t, "operating_systems_Mid_answer_key.pdf", ak.Name)
	assert.Equal(t, "%PDF", string(ak.Data[:4]))
}

func TestRenderUnknownVariant(t *testing.T) {
	r := NewPDF(NewMemoryStore(), "")
	_, err := r.Render(context.Background(), testPaper(), models.RenderVariant("epub"))
	require.Error(t, err)
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	a := &Artifact{ID: "a1", PaperID: "p1", Name: "x.pdf", ContentType: "application/pdf", Data: []byte("%PDF-fake")}
	require.NoError(t, store.Put(ctx, a))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	got.Data[0] = 'X'
	again, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, byte('%'), again.Data[0], "callers must not be able to mutate stored data")

	require.NoError(t, store.Delete(ctx, "a1"))
	require.ErrorIs(t, store.Delete(ctx, "a1"), apperr.ErrNotFound)
}

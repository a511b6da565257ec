package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperforge-server/models"
)

func request() models.GenerationRequest {
	return models.GenerationRequest{
		Subject:    "Operating Systems",
		Department: "CSE",
		ExamType:   models.ExamMid,
		Categories: []models.QuestionSpec{
			{Category: models.CategoryMCQ, Count: 2, MarksEach: 1},
			{Category: models.CategoryShort, Count: 2, MarksEach: 3},
		},
		Provenance: models.ProvenanceRatio{PreviousPercent: 50, CreativePercent: 25, NewPercent: 25},
	}
}

func TestBuildPromptCoversRequest(t *testing.T) {
	req := request()
	req.TopicFocus = "process scheduling"

	prompt := BuildPrompt(req, "")
	assert.Contains(t, prompt, "Mid exam paper for Operating Systems (CSE)")
	assert.Contains(t, prompt, "MCQ: 2 questions x 1 marks = 2 marks")
	assert.Contains(t, prompt, "Short Answer: 2 questions x 3 marks = 6 marks")
	assert.Contains(t, prompt, "50% from Previous Year papers")
	assert.Contains(t, prompt, "TOPIC FOCUS: process scheduling")
	assert.Contains(t, prompt, "MCQ questions: Remember, Understand levels")

	withFeedback := BuildPrompt(req, "REGENERATION FEEDBACK: simpler wording")
	assert.Contains(t, withFeedback, "REGENERATION FEEDBACK: simpler wording")
}

func TestParseQuestions(t *testing.T) {
	raw := "```json\n" + `[
	 {"question_text": "Which scheduler picks the next runnable process?",
	  "answer_key": "B", "question_type": "MCQ", "blooms_level": "Remember",
	  "options": ["A) Long-term", "B) Short-term", "C) Medium-term", "D) Dispatcher"],
	  "correct_answer": "B", "unit": 2},
	 {"question_text": "What is a zombie process?", "answer_key": "A", "question_type": "MCQ", "blooms_level": "Understand"},
	 {"question_text": "Explain context switching.", "answer_key": "Saving and restoring CPU state.", "question_type": "Short", "blooms_level": "Understand", "marks": 3},
	 {"question_text": "Compare preemptive and cooperative scheduling.", "answer_key": "Preemption forces a switch.", "question_type": "Short", "blooms_level": "Apply"}
	]` + "\n```"

	questions, err := ParseQuestions(raw, request())
	require.NoError(t, err)
	require.Len(t, questions, 4)

	assert.Equal(t, 1, questions[0].Marks, "marks default to the category's marks-each")
	assert.Equal(t, 3, questions[2].Marks)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Len(t, questions[0].Options, 4)
	assert.Equal(t, 2, questions[0].Unit)
	assert.Equal(t, 0, questions[1].Unit)
	assert.Equal(t, questions[1].AnswerKey, questions[1].Explanation, "explanation falls back to the answer key")

	// 50/25/25 over four questions: first two previous, then creative, then new.
	assert.Equal(t, models.ProvenancePrevious, questions[0].Provenance)
	assert.Equal(t, models.ProvenancePrevious, questions[1].Provenance)
	assert.Equal(t, models.ProvenanceCreative, questions[2].Provenance)
	assert.Equal(t, models.ProvenanceNew, questions[3].Provenance)
}

func TestParseQuestionsWrappedObject(t *testing.T) {
	raw := `{"questions": [{"question_text": "Define a process.", "answer_key": "A running program.", "question_type": "Short"}]}`
	questions, err := ParseQuestions(raw, request())
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, models.CategoryShort, questions[0].Category)
}

func TestParseQuestionsRejectsGarbage(t *testing.T) {
	_, err := ParseQuestions("the model rambled instead of emitting JSON", request())
	require.Error(t, err)

	_, err = ParseQuestions("[]", request())
	require.Error(t, err)

	_, err = ParseQuestions(`[{"question_text": "x", "question_type": "Essay"}]`, request())
	require.Error(t, err, "types that were not requested are rejected")
}

const bankYAML = `
subjects:
  - subject: Operating Systems
    questions:
      - text: "Which syscall creates a new process?"
        answer_key: "fork"
        category: MCQ
        blooms_level: Remember
        unit: 1
        options: ["A) exec", "B) fork", "C) wait", "D) kill"]
        correct_answer: B
      - text: "What does the dispatcher do?"
        answer_key: "Hands the CPU to the chosen process"
        category: MCQ
      - text: "Name one page replacement algorithm."
        answer_key: "LRU"
        category: MCQ
      - text: "Explain a race condition."
        answer_key: "Outcome depends on interleaving."
        category: Short
        blooms_level: Apply
      - text: "Explain the critical section problem."
        answer_key: "Mutual exclusion over shared state."
        category: Short
`

func TestBankGenerateDeterministic(t *testing.T) {
	bank, err := ParseBank([]byte(bankYAML))
	require.NoError(t, err)

	req := request()
	first, err := bank.Generate(context.Background(), req, "")
	require.NoError(t, err)
	require.Len(t, first, 4)

	again, err := bank.Generate(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, first, again, "same request must yield the same selection")

	reshuffled, err := bank.Generate(context.Background(), req, "different angle please")
	require.NoError(t, err)
	require.Len(t, reshuffled, 4)

	for _, q := range first {
		if q.Category == models.CategoryMCQ {
			assert.Equal(t, 1, q.Marks)
		} else {
			assert.Equal(t, 3, q.Marks)
		}
		assert.NotEmpty(t, q.CognitiveLevel)
		assert.NotEmpty(t, q.Provenance)
		if q.Text == "Which syscall creates a new process?" {
			assert.Equal(t, 1, q.Unit)
		}
	}
}

func TestBankGenerateShortfall(t *testing.T) {
	bank, err := ParseBank([]byte(bankYAML))
	require.NoError(t, err)

	req := request()
	req.Categories = []models.QuestionSpec{{Category: models.CategoryLong, Count: 1, MarksEach: 10}}
	_, err = bank.Generate(context.Background(), req, "")
	require.Error(t, err)

	req.Subject = "Quantum Basket Weaving"
	_, err = bank.Generate(context.Background(), req, "")
	require.Error(t, err)
}

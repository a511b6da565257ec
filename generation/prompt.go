package generation

import (
	"fmt"
	"strings"

	"paperforge-server/models"
)

// bloomMapping pins each question category to the Bloom's levels the model
// should target for it.
var bloomMapping = map[models.QuestionCategory]string{
	models.CategoryMCQ:    "Remember, Understand levels",
	models.CategoryShort:  "Understand, Apply levels",
	models.CategoryMedium: "Apply, Analyze levels",
	models.CategoryLong:   "Analyze, Evaluate, Create levels",
}

var categoryLabels = map[models.QuestionCategory]string{
	models.CategoryMCQ:    "MCQ",
	models.CategoryShort:  "Short Answer",
	models.CategoryMedium: "Medium Answer",
	models.CategoryLong:   "Long Answer",
}

// BuildPrompt assembles the full generation instruction for a request. The
// optional feedback block carries regeneration context.
func BuildPrompt(req models.GenerationRequest, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s exam paper for %s (%s) with the following specifications:\n\n",
		req.ExamType, req.Subject, req.Department)

	b.WriteString("QUESTION DISTRIBUTION:\n")
	for _, spec := range req.Categories {
		fmt.Fprintf(&b, "- %s: %d questions x %d marks = %d marks\n",
			categoryLabels[spec.Category], spec.Count, spec.MarksEach, spec.CategoryMarks())
	}

	b.WriteString("\nQUESTION SOURCE REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- %d%% from Previous Year papers (use similar questions from past papers)\n", req.Provenance.PreviousPercent)
	fmt.Fprintf(&b, "- %d%% Creative/Modified (modify existing questions creatively)\n", req.Provenance.CreativePercent)
	fmt.Fprintf(&b, "- %d%% New/AI-Generated (create completely new questions)\n", req.Provenance.NewPercent)

	b.WriteString("\nBLOOM'S TAXONOMY DISTRIBUTION:\n")
	for _, spec := range req.Categories {
		fmt.Fprintf(&b, "- %s questions: %s\n", categoryLabels[spec.Category], bloomMapping[spec.Category])
	}

	if req.TopicFocus != "" {
		fmt.Fprintf(&b, "\nTOPIC FOCUS: %s\n", req.TopicFocus)
	} else {
		b.WriteString("\nCover all major topics from the syllabus\n")
	}

	b.WriteString(`
IMPORTANT:
- For MCQ questions, provide exactly four options and name the correct one
- Ensure all questions are relevant to the subject
- Maintain academic standards
- No duplicate questions

Respond with a JSON array only. Each element:
{"question_text": "...", "answer_key": "...", "explanation": "...",
 "question_type": "MCQ|Short|Medium|Long", "blooms_level": "...",
 "marks": N, "options": ["A) ...","B) ...","C) ...","D) ..."],
 "correct_answer": "A", "unit": 1}
Options and correct_answer apply to MCQ questions only.
`)

	if feedback != "" {
		b.WriteString("\n")
		b.WriteString(feedback)
	}
	return b.String()
}

// assignProvenance stamps a source onto each question by position, honoring
// the requested percentages the way the summary math expects.
func assignProvenance(questions []models.Question, ratio models.ProvenanceRatio) {
	total := len(questions)
	previousCount := total * ratio.PreviousPercent / 100
	creativeCount := total * ratio.CreativePercent / 100
	for i := range questions {
		if questions[i].Provenance != "" {
			continue
		}
		switch {
		case i < previousCount:
			questions[i].Provenance = models.ProvenancePrevious
		case i < previousCount+creativeCount:
			questions[i].Provenance = models.ProvenanceCreative
		default:
			questions[i].Provenance = models.ProvenanceNew
		}
	}
}

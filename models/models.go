
package models

import (
	"time"
)

// QuestionCategory is the structural category of a question.
type QuestionCategory string

const (
	CategoryMCQ    QuestionCategory = "MCQ"
	CategoryShort  QuestionCategory = "Short"
	CategoryMedium QuestionCategory = "Medium"
	CategoryLong   QuestionCategory = "Long"
)

// Categories lists every valid question category in display order.
var Categories = []QuestionCategory{CategoryMCQ, CategoryShort, CategoryMedium, CategoryLong}

// Provenance records where a question came from.
type Provenance string

const (
	ProvenancePrevious Provenance = "previous"
	ProvenanceCreative Provenance = "creative"
	ProvenanceNew      Provenance = "new"
)

// ExamType is the kind of examination a paper is generated for.
type ExamType string

const (
	ExamMid      ExamType = "Mid"
	ExamFinal    ExamType = "Final"
	ExamInternal ExamType = "Internal"
	ExamQuiz     ExamType = "Quiz"
)

// PaperStatus is the lifecycle state of a paper. draft covers both
// first-generation and post-regeneration states; approved is terminal.
type PaperStatus string

const (
	StatusDraft    PaperStatus = "draft"
	StatusApproved PaperStatus = "approved"
)

// HistoryStatus is the state of a generation attempt in the ledger.
type HistoryStatus string

const (
	HistoryInProgress HistoryStatus = "in_progress"
	HistorySuccess    HistoryStatus = "success"
	HistoryFailed     HistoryStatus = "failed"
)

// RenderVariant selects which view of a paper the renderer produces.
type RenderVariant string

const (
	VariantQuestionsOnly RenderVariant = "questions_only"
	VariantWithAnswers   RenderVariant = "with_answers"
)

// BloomsLevels are the cognitive levels questions are tagged with.
var BloomsLevels = []string{"Remember", "Understand", "Apply", "Analyze", "Evaluate", "Create"}

// QuestionSpec is a per-category target: how many questions and how many
// marks each carries.
type QuestionSpec struct {
	Category  QuestionCategory `json:"category" binding:"required,oneof=MCQ Short Medium Long"`
	Count     int              `json:"count" binding:"min=0"`
	MarksEach int              `json:"marks_each" binding:"min=0"`
}

// CategoryMarks is the total marks this spec contributes to the paper.
func (s QuestionSpec) CategoryMarks() int {
	return s.Count * s.MarksEach
}

// ProvenanceRatio splits requested questions across origins. The three
// percentages must sum to exactly 100 when a generation request is submitted.
type ProvenanceRatio struct {
	PreviousPercent int `json:"previous_percent" binding:"min=0,max=100"`
	CreativePercent int `json:"creative_percent" binding:"min=0,max=100"`
	NewPercent      int `json:"new_percent" binding:"min=0,max=100"`
}

// Sum returns the total of the three percentages.
func (r ProvenanceRatio) Sum() int {
	return r.PreviousPercent + r.CreativePercent + r.NewPercent
}

// GenerationRequest is the full specification a paper is generated from.
// It is stored on the paper so regeneration can replay it.
type GenerationRequest struct {
	Subject    string          `json:"subject" binding:"required"`
	Department string          `json:"department" binding:"required"`
	Section    string          `json:"section,omitempty"`
	Year       int             `json:"year,omitempty"`
	ExamType   ExamType        `json:"exam_type" binding:"required,oneof=Mid Final Internal Quiz"`
	TopicFocus string          `json:"topic_focus,omitempty"`
	Categories []QuestionSpec  `json:"categories" binding:"required,min=1,max=4,dive"`
	Provenance ProvenanceRatio `json:"provenance"`
}

// TotalMarks is the sum of category marks across the request.
func (g GenerationRequest) TotalMarks() int {
	total := 0
	for _, spec := range g.Categories {
		total += spec.CategoryMarks()
	}
	return total
}

// TotalQuestions is the number of questions the request asks for.
func (g GenerationRequest) TotalQuestions() int {
	total := 0
	for _, spec := range g.Categories {
		total += spec.Count
	}
	return total
}

// Question is a single generated question. Immutable once produced; content
// changes happen by regenerating the whole paper.
type Question struct {
	Text           string           `json:"question_text"`
	AnswerKey      string           `json:"answer_key"`
	Explanation    string           `json:"explanation,omitempty"`
	Category       QuestionCategory `json:"question_type"`
	CognitiveLevel string           `json:"blooms_level"`
	Marks          int              `json:"marks"`
	Provenance     Provenance       `json:"source"`
	Unit           int              `json:"unit,omitempty"`
	Options        []string         `json:"options,omitempty"`        // MCQ only
	CorrectAnswer  string           `json:"correct_answer,omitempty"` // MCQ only: A, B, C, D
	Difficulty     string           `json:"difficulty,omitempty"`     // Easy, Medium, Hard
}

// DistributionSummary is the realized distribution of a question list:
// counts by category, cognitive level, provenance, and (level x provenance).
type DistributionSummary struct {
	TotalQuestions    int                           `json:"total_questions"`
	ByCategory        map[QuestionCategory]int      `json:"by_category"`
	MarksByCategory   map[QuestionCategory]int      `json:"marks_by_category"`
	ByCognitiveLevel  map[string]int                `json:"by_blooms_level"`
	ByProvenance      map[Provenance]int            `json:"by_source"`
	ByLevelProvenance map[string]map[Provenance]int `json:"blooms_with_sources"`
}

// ApprovedArtifacts holds the rendered PDF artifact IDs. Present exactly
// when the paper is approved.
type ApprovedArtifacts struct {
	QuestionPaperID string `json:"question_paper_id"`
	AnswerKeyID     string `json:"answer_key_id"`
}

// Paper is the central versioned entity. One Paper row is one lineage: it is
// mutated in place by metadata edits and regenerations while in draft, then
// frozen at approval. An edit copy forks a new lineage with its own ID.
type Paper struct {
	ID                string              `json:"id"`
	OwnerID           string              `json:"owner_id"`
	Subject           string              `json:"subject"`
	Department        string              `json:"department"`
	Section           string              `json:"section,omitempty"`
	Year              int                 `json:"year,omitempty"`
	ExamType          ExamType            `json:"exam_type"`
	TotalMarks        int                 `json:"total_marks"`
	Request           GenerationRequest   `json:"request"`
	Questions         []Question          `json:"questions"`
	Distribution      DistributionSummary `json:"distribution"`
	Status            PaperStatus         `json:"status"`
	RegenerationCount int                 `json:"regeneration_count"`
	IsEditCopy        bool                `json:"is_edit_copy"`
	SourcePaperID     string              `json:"source_paper_id,omitempty"`
	Artifacts         *ApprovedArtifacts  `json:"artifacts,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	ApprovedAt        *time.Time          `json:"approved_at,omitempty"`
}

// HistoryEntry is one generation or regeneration attempt. Its lifecycle is
// independent of the paper it produced: deleting either side leaves the
// other untouched.
type HistoryEntry struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"owner_id"`
	Status       HistoryStatus     `json:"status"`
	Parameters   GenerationRequest `json:"parameters"`
	Feedback     string            `json:"feedback,omitempty"`
	PaperID      string            `json:"paper_id,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// Targets is what a generation request asks for in aggregate.
type Targets struct {
	TotalMarks     int `json:"total_marks"`
	TotalQuestions int `json:"total_questions"`
}

// Summary aggregates a set of approved papers.
type Summary struct {
	TotalPapers              int                      `json:"total_papers"`
	TotalQuestions           int                      `json:"total_questions"`
	AverageMarks             float64                  `json:"average_marks"`
	SubjectDistribution      map[string]int           `json:"subject_distribution"`
	DepartmentDistribution   map[string]int           `json:"department_distribution"`
	QuestionTypeDistribution map[QuestionCategory]int `json:"question_type_distribution"`
	BloomsLevelDistribution  map[string]int           `json:"blooms_level_distribution"`
	SourceDistribution       map[Provenance]int       `json:"source_distribution"`
	Insights                 []string                 `json:"insights"`
	Suggestions              []string                 `json:"suggestions"`
	CustomAnalysis           string                   `json:"custom_analysis,omitempty"`
}

// DashboardSummary is the per-owner activity overview.
type DashboardSummary struct {
	TotalPapers       int     `json:"total_papers"`
	ApprovedPapers    int     `json:"approved_papers"`
	DraftPapers       int     `json:"draft_papers"`
	UniqueSubjects    int     `json:"unique_subjects"`
	UniqueDepartments int     `json:"unique_departments"`
	RecentPapers      []Paper `json:"recent_papers"`
	Summary           string  `json:"summary,omitempty"`
}

// RegeneratePaperRequest carries optional feedback for a regeneration.
type RegeneratePaperRequest struct {
	FeedbackPrompt string `json:"feedback_prompt"`
}

// UpdatePaperMetadataRequest patches draft paper metadata. Pointer fields
// distinguish "not provided" from zero values.
type UpdatePaperMetadataRequest struct {
	Subject    *string `json:"subject"`
	Department *string `json:"department"`
	Section    *string `json:"section"`
	Year       *int    `json:"year"`
	TotalMarks *int    `json:"total_marks"`
}

// PaperListEntry is the abridged paper representation for list endpoints.
type PaperListEntry struct {
	ID            string             `json:"id"`
	Subject       string             `json:"subject"`
	Department    string             `json:"department"`
	Section       string             `json:"section,omitempty"`
	Year          int                `json:"year,omitempty"`
	TotalMarks    int                `json:"total_marks"`
	QuestionCount int                `json:"question_count"`
	Status        PaperStatus        `json:"status"`
	IsEditCopy    bool               `json:"is_edit_copy,omitempty"`
	Artifacts     *ApprovedArtifacts `json:"artifacts,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
}

// ListEntry projects a Paper into its list representation.
func ListEntry(p *Paper) PaperListEntry {
	return PaperListEntry{
		ID:            p.ID,
		Subject:       p.Subject,
		Department:    p.Department,
		Section:       p.Section,
		Year:          p.Year,
		TotalMarks:    p.TotalMarks,
		QuestionCount: len(p.Questions),
		Status:        p.Status,
		IsEditCopy:    p.IsEditCopy,
		Artifacts:     p.Artifacts,
		CreatedAt:     p.CreatedAt,
		ApprovedAt:    p.ApprovedAt,
	}
}

// Package analytics aggregates approved papers into summaries, dashboard
// payloads, and per-paper suggestions. All numeric output is deterministic;
// only the optional free-text analysis touches an external model.
package analytics

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"paperforge-server/apperr"
	"paperforge-server/distribution"
	"paperforge-server/models"
	"paperforge-server/utils"
)

// Summarizer produces free-text analysis from a prompt. Optional; the engine
// works without one, it just skips custom analysis.
type Summarizer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

type Engine struct {
	summarizer Summarizer
}

// NewEngine builds an analytics engine. summarizer may be nil.
func NewEngine(summarizer Summarizer) *Engine {
	return &Engine{summarizer: summarizer}
}

// Summarize aggregates the given papers. The result depends only on the set
// of papers, not their order; calling it twice yields the same summary.
func (e *Engine) Summarize(ctx context.Context, papers []models.Paper, customPrompt string) (models.Summary, error) {
	s := models.Summary{
		TotalPapers:            len(papers),
		SubjectDistribution:    make(map[string]int),
		DepartmentDistribution: make(map[string]int),
	}

	var allQuestions []models.Question
	var marksSum int
	for _, p := range papers {
		s.SubjectDistribution[p.Subject]++
		s.DepartmentDistribution[p.Department]++
		marksSum += p.TotalMarks
		allQuestions = append(allQuestions, p.Questions...)
	}
	dist := distribution.ComputeRealized(allQuestions)
	s.TotalQuestions = dist.TotalQuestions
	s.QuestionTypeDistribution = dist.ByCategory
	s.BloomsLevelDistribution = dist.ByCognitiveLevel
	s.SourceDistribution = dist.ByProvenance
	if len(papers) > 0 {
		s.AverageMarks = math.Round(float64(marksSum)/float64(len(papers))*100) / 100
	}

	s.Insights = insights(papers, s)
	s.Suggestions = suggestions(s)

	if customPrompt != "" && e.summarizer != nil {
		analysis, err := e.summarizer.Analyze(ctx, customAnalysisPrompt(customPrompt, s))
		if err != nil {
			return models.Summary{}, apperr.Generation(err)
		}
		s.CustomAnalysis = analysis
	}
	return s, nil
}

// Dashboard builds the activity overview for one owner's papers. A
// summarizer failure degrades to an empty summary text rather than failing
// the whole payload.
func (e *Engine) Dashboard(ctx context.Context, papers []models.Paper) models.DashboardSummary {
	d := models.DashboardSummary{TotalPapers: len(papers)}
	subjects := make(map[string]struct{})
	departments := make(map[string]struct{})
	for _, p := range papers {
		subjects[p.Subject] = struct{}{}
		departments[p.Department] = struct{}{}
		switch p.Status {
		case models.StatusApproved:
			d.ApprovedPapers++
		case models.StatusDraft:
			d.DraftPapers++
		}
	}
	d.UniqueSubjects = len(subjects)
	d.UniqueDepartments = len(departments)

	recent := make([]models.Paper, len(papers))
	copy(recent, papers)
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].CreatedAt.Equal(recent[j].CreatedAt) {
			return recent[i].ID > recent[j].ID
		}
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	d.RecentPapers = recent

	if e.summarizer != nil && len(papers) > 0 {
		text, err := e.summarizer.Analyze(ctx, dashboardPrompt(d))
		if err != nil {
			log.Printf("Dashboard summary text unavailable: %v", err)
		} else {
			d.Summary = text
		}
	}
	return d
}

// PaperSuggestions asks the summarizer for improvement suggestions on one
// paper, in the context of the owner's other approved papers.
func (e *Engine) PaperSuggestions(ctx context.Context, p *models.Paper, approved []models.Paper) (string, error) {
	if e.summarizer == nil {
		return "", apperr.Generation(fmt.Errorf("no summarizer configured"))
	}
	text, err := e.summarizer.Analyze(ctx, suggestionsPrompt(p, approved))
	if err != nil {
		return "", apperr.Generation(err)
	}
	return text, nil
}

// insights derives observations from the aggregate counts. Iteration over
// maps goes through sorted keys so the output is stable.
func insights(papers []models.Paper, s models.Summary) []string {
	var out []string
	if s.TotalQuestions == 0 {
		return out
	}

	typeCounts := make(map[string]int, len(s.QuestionTypeDistribution))
	for cat, n := range s.QuestionTypeDistribution {
		typeCounts[string(cat)] = n
	}
	if dominant, n := dominantKey(typeCounts); dominant != "" {
		pct := distribution.Percent(n, s.TotalQuestions)
		out = append(out, fmt.Sprintf("%s questions dominate at %.1f%% of all questions", dominant, pct))
		if pct > 50 {
			out = append(out, fmt.Sprintf("Question types are imbalanced: %s alone exceeds half of the pool", dominant))
		}
	}

	higher := 0
	for _, level := range []string{"Analyze", "Evaluate", "Create"} {
		higher += s.BloomsLevelDistribution[level]
	}
	out = append(out, fmt.Sprintf("%.1f%% of questions target higher-order thinking (Analyze and above)", distribution.Percent(higher, s.TotalQuestions)))

	var thin []string
	for _, dept := range utils.SortedKeys(s.DepartmentDistribution) {
		if s.DepartmentDistribution[dept] == 1 {
			thin = append(thin, dept)
		}
	}
	if len(thin) > 0 {
		out = append(out, fmt.Sprintf("Departments with a single approved paper: %s", strings.Join(thin, ", ")))
	}

	avgQ := float64(s.TotalQuestions) / float64(len(papers))
	out = append(out, fmt.Sprintf("Papers average %.1f questions each", avgQ))
	for _, p := range sortedByID(papers) {
		n := float64(len(p.Questions))
		if n < avgQ*0.5 || n > avgQ*1.5 {
			out = append(out, fmt.Sprintf("Paper %s (%s) is an outlier with %d questions", p.ID, p.Subject, len(p.Questions)))
		}
	}
	return out
}

func suggestions(s models.Summary) []string {
	var out []string
	if s.TotalQuestions == 0 {
		return []string{"Approve some papers to unlock analytics"}
	}
	higher := 0
	for _, level := range []string{"Analyze", "Evaluate", "Create"} {
		higher += s.BloomsLevelDistribution[level]
	}
	if distribution.Percent(higher, s.TotalQuestions) < 25 {
		out = append(out, "Increase higher-order Bloom's coverage; most questions stay at recall and comprehension levels")
	}
	typeCounts := make(map[string]int, len(s.QuestionTypeDistribution))
	for cat, n := range s.QuestionTypeDistribution {
		typeCounts[string(cat)] = n
	}
	if dominant, n := dominantKey(typeCounts); dominant != "" && distribution.Percent(n, s.TotalQuestions) > 50 {
		out = append(out, fmt.Sprintf("Diversify question types; reduce reliance on %s questions", dominant))
	}
	if s.SourceDistribution[models.ProvenanceCreative] == 0 {
		out = append(out, "Add creative questions to introduce novel problem framings")
	}
	if len(out) == 0 {
		out = append(out, "Question pool is well balanced across types and cognitive levels")
	}
	return out
}

// dominantKey returns the key with the highest count, breaking ties by the
// lexicographically smaller key.
func dominantKey(counts map[string]int) (string, int) {
	best, bestN := "", 0
	for _, k := range utils.SortedKeys(counts) {
		if counts[k] > bestN {
			best, bestN = k, counts[k]
		}
	}
	return best, bestN
}

func sortedByID(papers []models.Paper) []models.Paper {
	out := make([]models.Paper, len(papers))
	copy(out, papers)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func customAnalysisPrompt(customPrompt string, s models.Summary) string {
	var b strings.Builder
	b.WriteString("You are analyzing a pool of approved exam papers.\n\n")
	fmt.Fprintf(&b, "AGGREGATE DATA:\n- %d papers, %d questions, average %.2f marks per paper\n",
		s.TotalPapers, s.TotalQuestions, s.AverageMarks)
	for _, subject := range utils.SortedKeys(s.SubjectDistribution) {
		fmt.Fprintf(&b, "- Subject %s: %d papers\n", subject, s.SubjectDistribution[subject])
	}
	fmt.Fprintf(&b, "\nANALYSIS REQUEST:\n%s\n", customPrompt)
	b.WriteString("\nAnswer concisely based only on the data above.")
	return b.String()
}

func dashboardPrompt(d models.DashboardSummary) string {
	return fmt.Sprintf(
		"Write a two-sentence activity summary for a teacher's exam paper workspace: %d papers total, %d approved, %d drafts, across %d subjects and %d departments.",
		d.TotalPapers, d.ApprovedPapers, d.DraftPapers, d.UniqueSubjects, d.UniqueDepartments)
}

func suggestionsPrompt(p *models.Paper, approved []models.Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest improvements for this %s exam paper (%s, %d marks, %d questions).\n",
		p.Subject, p.ExamType, p.TotalMarks, len(p.Questions))
	b.WriteString("\nQUESTIONS:\n")
	for i, q := range p.Questions {
		fmt.Fprintf(&b, "%d. [%s, %d marks, %s] %s\n", i+1, q.Category, q.Marks, q.CognitiveLevel, q.Text)
	}
	fmt.Fprintf(&b, "\nThe teacher has %d other approved papers for context.\n", len(approved))
	b.WriteString("Give three concrete suggestions covering coverage, difficulty balance, and clarity.")
	return b.String()
}

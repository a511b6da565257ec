package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"paperforge-server/models"
)

// PDF renders question-paper and answer-key documents with gofpdf and
// stores them through an ArtifactStore.
type PDF struct {
	artifacts   ArtifactStore
	institution string
}

// NewPDF builds a renderer. institution is the header line on every paper.
func NewPDF(artifacts ArtifactStore, institution string) *PDF {
	if institution == "" {
		institution = "UNIVERSITY EXAMINATION"
	}
	return &PDF{artifacts: artifacts, institution: institution}
}

// Render produces the requested variant and returns the stored artifact ID.
func (r *PDF) Render(ctx context.Context, p *models.Paper, variant models.RenderVariant) (string, error) {
	var (
		data []byte
		err  error
		name string
	)
	switch variant {
	case models.VariantQuestionsOnly:
		data, err = r.questionPaper(p)
		name = fmt.Sprintf("%s_%s_question_paper.pdf", sanitize(p.Subject), p.ExamType)
	case models.VariantWithAnswers:
		data, err = r.answerKey(p)
		name = fmt.Sprintf("%s_%s_answer_key.pdf", sanitize(p.Subject), p.ExamType)
	default:
		return "", fmt.Errorf("unknown render variant %q", variant)
	}
	if err != nil {
		return "", err
	}

	a := &Artifact{
		ID:          uuid.NewString(),
		PaperID:     p.ID,
		Name:        name,
		ContentType: "application/pdf",
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.artifacts.Put(ctx, a); err != nil {
		return "", fmt.Errorf("failed to store %s: %w", name, err)
	}
	return a.ID, nil
}

func (r *PDF) questionPaper(p *models.Paper) ([]byte, error) {
	pdf := newDoc()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, r.institution, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Department of %s", p.Department), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, p.Subject, "", 1, "C", false, 0, "")
	if p.Section != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Section: %s", p.Section), "", 1, "C", false, 0, "")
	}
	if p.Year != 0 {
		pdf.CellFormat(0, 6, fmt.Sprintf("Year: %d", p.Year), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("%s Examination - Total Marks: %d", p.ExamType, p.TotalMarks), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Instructions:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, inst := range []string{
		"Answer all questions.",
		"Each question carries marks as indicated.",
		"Write clearly and legibly.",
		"Use of calculators is permitted unless otherwise stated.",
	} {
		pdf.CellFormat(0, 5, "- "+inst, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "QUESTIONS", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for i, q := range p.Questions {
		writeQuestionHeader(pdf, i+1, q)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 5.5, q.Text, "", "L", false)
		writeOptions(pdf, q)
		pdf.Ln(3)
	}
	return output(pdf)
}

func (r *PDF) answerKey(p *models.Paper) ([]byte, error) {
	pdf := newDoc()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "ANSWER KEY", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Department of %s", p.Department), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, p.Subject, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	for i, q := range p.Questions {
		writeQuestionHeader(pdf, i+1, q)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, "Question: "+q.Text, "", "L", false)
		writeOptions(pdf, q)

		pdf.SetFont("Arial", "B", 10)
		answer := q.AnswerKey
		if q.Category == models.CategoryMCQ && q.CorrectAnswer != "" {
			answer = q.CorrectAnswer
		}
		pdf.MultiCell(0, 5, "Answer: "+answer, "", "L", false)
		if q.Explanation != "" && q.Explanation != q.AnswerKey {
			pdf.SetFont("Arial", "I", 10)
			pdf.MultiCell(0, 5, "Explanation: "+q.Explanation, "", "L", false)
		}
		pdf.Ln(3)
	}
	return output(pdf)
}

func newDoc() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	return pdf
}

func writeQuestionHeader(pdf *gofpdf.Fpdf, num int, q models.Question) {
	pdf.SetFont("Arial", "B", 11)
	header := fmt.Sprintf("Q%d. [%d marks] [%s] [%s]", num, q.Marks, q.CognitiveLevel, q.Category)
	pdf.CellFormat(0, 6, header, "", 1, "L", false, 0, "")
}

func writeOptions(pdf *gofpdf.Fpdf, q models.Question) {
	if q.Category != models.CategoryMCQ || len(q.Options) == 0 {
		return
	}
	pdf.SetFont("Arial", "", 10)
	for _, opt := range q.Options {
		pdf.CellFormat(8, 5, "", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 5, opt, "", "L", false)
	}
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf generation failed: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, s)
}

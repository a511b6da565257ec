
package paper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

// PostgresStore persists papers in the papers table. Questions, the stored
// generation request, and the realized distribution live in JSONB columns;
// every update rewrites the full row, so a concurrent reader sees either the
// old or the new paper, never a mix.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const paperColumns = `
	id, owner_id, subject, department, COALESCE(section, ''), COALESCE(year, 0),
	exam_type, total_marks, request, questions, distribution, status,
	regeneration_count, is_edit_copy, COALESCE(source_paper_id, ''),
	question_paper_pdf, answer_key_pdf, created_at, updated_at, approved_at`

func (s *PostgresStore) Insert(ctx context.Context, p *models.Paper) error {
	request, questions, dist, err := marshalPaperDocs(p)
	if err != nil {
		return err
	}
	var questionPDF, answerPDF *string
	if p.Artifacts != nil {
		questionPDF = &p.Artifacts.QuestionPaperID
		answerPDF = &p.Artifacts.AnswerKeyID
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO papers (id, owner_id, subject, department, section, year, exam_type, total_marks,
			request, questions, distribution, status, regeneration_count, is_edit_copy,
			source_paper_id, question_paper_pdf, answer_key_pdf, created_at, updated_at, approved_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0), $7, $8, $9, $10, $11, $12, $13, $14,
			NULLIF($15, ''), $16, $17, $18, $19, $20)
	`, p.ID, p.OwnerID, p.Subject, p.Department, p.Section, p.Year, p.ExamType, p.TotalMarks,
		request, questions, dist, p.Status, p.RegenerationCount, p.IsEditCopy,
		p.SourcePaperID, questionPDF, answerPDF, p.CreatedAt, p.UpdatedAt, p.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to insert paper: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Paper, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = $1`, id)
	p, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("paper %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch paper: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Paper) error {
	request, questions, dist, err := marshalPaperDocs(p)
	if err != nil {
		return err
	}
	var questionPDF, answerPDF *string
	if p.Artifacts != nil {
		questionPDF = &p.Artifacts.QuestionPaperID
		answerPDF = &p.Artifacts.AnswerKeyID
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE papers SET subject = $2, department = $3, section = NULLIF($4, ''), year = NULLIF($5, 0),
			exam_type = $6, total_marks = $7, request = $8, questions = $9, distribution = $10,
			status = $11, regeneration_count = $12, question_paper_pdf = $13, answer_key_pdf = $14,
			updated_at = $15, approved_at = $16
		WHERE id = $1
	`, p.ID, p.Subject, p.Department, p.Section, p.Year, p.ExamType, p.TotalMarks,
		request, questions, dist, p.Status, p.RegenerationCount, questionPDF, answerPDF,
		p.UpdatedAt, p.ApprovedAt)
	if err != nil {
		return fmt.Errorf("failed to update paper: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("paper %s not found", p.ID)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM papers WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("paper %s not found", id)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]models.Paper, error) {
	return s.queryPapers(ctx, `
		SELECT `+paperColumns+` FROM papers WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
}

func (s *PostgresStore) SearchApproved(ctx context.Context, ownerID, subject, department string) ([]models.Paper, error) {
	return s.queryPapers(ctx, `
		SELECT `+paperColumns+` FROM papers
		WHERE owner_id = $1 AND status = 'approved'
			AND ($2 = '' OR subject ILIKE '%' || $2 || '%')
			AND ($3 = '' OR department ILIKE '%' || $3 || '%')
		ORDER BY created_at DESC
	`, ownerID, subject, department)
}

func (s *PostgresStore) queryPapers(ctx context.Context, query string, args ...any) ([]models.Paper, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	var papers []models.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

func marshalPaperDocs(p *models.Paper) (request, questions, dist []byte, err error) {
	if request, err = json.Marshal(p.Request); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if questions, err = json.Marshal(p.Questions); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	if dist, err = json.Marshal(p.Distribution); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal distribution: %w", err)
	}
	return request, questions, dist, nil
}

func scanPaper(row pgx.Row) (*models.Paper, error) {
	var p models.Paper
	var request, questions, dist []byte
	var questionPDF, answerPDF *string
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Subject, &p.Department, &p.Section, &p.Year,
		&p.ExamType, &p.TotalMarks, &request, &questions, &dist, &p.Status,
		&p.RegenerationCount, &p.IsEditCopy, &p.SourcePaperID,
		&questionPDF, &answerPDF, &p.CreatedAt, &p.UpdatedAt, &p.ApprovedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(request, &p.Request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if err := json.Unmarshal(questions, &p.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	if err := json.Unmarshal(dist, &p.Distribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal distribution: %w", err)
	}
	if questionPDF != nil && answerPDF != nil {
		p.Artifacts = &models.ApprovedArtifacts{QuestionPaperID: *questionPDF, AnswerKeyID: *answerPDF}
	}
	return &p, nil
}

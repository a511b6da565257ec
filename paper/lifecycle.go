package paper

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"paperforge-server/apperr"
	"paperforge-server/distribution"
	"paperforge-server/history"
	"paperforge-server/models"
	"paperforge-server/utils"
)

// Controller owns the paper lifecycle: draft -> approved, with edit copies
// forking new lineages from approved papers. All mutations go through it so
// the invariants hold after every operation, and at most one mutating
// operation is in flight per paper at a time.
type Controller struct {
	store    Store
	ledger   *history.Ledger
	gen      GenerationService
	renderer DocumentRenderer

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewController wires the lifecycle controller.
func NewController(store Store, ledger *history.Ledger, gen GenerationService, renderer DocumentRenderer) *Controller {
	return &Controller{
		store:    store,
		ledger:   ledger,
		gen:      gen,
		renderer: renderer,
		inflight: make(map[string]struct{}),
	}
}

// acquire claims the exclusive mutation lease for a paper. A second mutating
// call on the same lineage fails fast instead of queueing.
func (c *Controller) acquire(paperID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[paperID]; busy {
		return apperr.Conflictf("another operation is in progress on paper %s", paperID)
	}
	c.inflight[paperID] = struct{}{}
	return nil
}

func (c *Controller) release(paperID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, paperID)
}

// Create validates the request, records the attempt in the ledger, invokes
// the generation service, and persists the resulting paper as a draft. A
// generator failure leaves no paper behind and a failed ledger entry.
func (c *Controller) Create(ctx context.Context, ownerID string, req models.GenerationRequest) (*models.Paper, error) {
	targets, err := distribution.ComputeTargets(req)
	if err != nil {
		return nil, err
	}

	entryID, err := c.ledger.Open(ctx, ownerID, req, "")
	if err != nil {
		return nil, err
	}

	questions, err := c.gen.Generate(ctx, req, "")
	if err != nil {
		if ferr := c.ledger.Fail(ctx, entryID, err.Error()); ferr != nil {
			log.Printf("Failed to record generation failure in history: %v", ferr)
		}
		return nil, apperr.Generation(err)
	}

	now := time.Now().UTC()
	p := &models.Paper{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Subject:      req.Subject,
		Department:   req.Department,
		Section:      req.Section,
		Year:         req.Year,
		ExamType:     req.ExamType,
		TotalMarks:   targets.TotalMarks,
		Request:      req,
		Questions:    questions,
		Distribution: distribution.ComputeRealized(questions),
		Status:       models.StatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := c.store.Insert(ctx, p); err != nil {
		if ferr := c.ledger.Fail(ctx, entryID, err.Error()); ferr != nil {
			log.Printf("Failed to record store failure in history: %v", ferr)
		}
		return nil, err
	}
	if err := c.ledger.Complete(ctx, entryID, p.ID); err != nil {
		log.Printf("Failed to close history entry %s: %v", entryID, err)
	}
	log.Printf("Generated paper %s: %s (%s), %d questions, %d marks",
		p.ID, p.Subject, p.Department, len(p.Questions), p.TotalMarks)
	return p, nil
}

// Get returns a paper by ID, owner-scoped. Reads never wait on mutations.
func (c *Controller) Get(ctx context.Context, ownerID, paperID string) (*models.Paper, error) {
	p, err := c.store.Get(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, apperr.NotFoundf("paper %s not found", paperID)
	}
	return p, nil
}

// List returns all of an owner's papers, newest first.
func (c *Controller) List(ctx context.Context, ownerID string) ([]models.Paper, error) {
	return c.store.List(ctx, ownerID)
}

// SearchApproved returns approved papers matching the optional filters.
func (c *Controller) SearchApproved(ctx context.Context, ownerID, subject, department string) ([]models.Paper, error) {
	return c.store.SearchApproved(ctx, ownerID, subject, department)
}

// UpdateMetadata patches metadata on a draft paper. Approved papers are
// frozen; totalMarks must stay positive.
func (c *Controller) UpdateMetadata(ctx context.Context, ownerID, paperID string, req models.UpdatePaperMetadataRequest) (*models.Paper, error) {
	if req.Subject == nil && req.Department == nil && req.Section == nil && req.Year == nil && req.TotalMarks == nil {
		return nil, apperr.Validationf("no fields to update")
	}
	if req.TotalMarks != nil && *req.TotalMarks <= 0 {
		return nil, apperr.Validationf("total_marks must be a positive integer")
	}

	if err := c.acquire(paperID); err != nil {
		return nil, err
	}
	defer c.release(paperID)

	p, err := c.Get(ctx, ownerID, paperID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusDraft {
		return nil, apperr.InvalidStatef("paper %s is %s; metadata is frozen", paperID, p.Status)
	}

	if req.Subject != nil {
		p.Subject = *req.Subject
	}
	if req.Department != nil {
		p.Department = *req.Department
	}
	if req.Section != nil {
		p.Section = *req.Section
	}
	if req.Year != nil {
		p.Year = *req.Year
	}
	if req.TotalMarks != nil {
		p.TotalMarks = *req.TotalMarks
	}
	p.UpdatedAt = time.Now().UTC()

	if err := c.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Regenerate replaces a draft paper's content with a fresh generation run,
// keeping the stored request and folding in optional feedback. On any
// failure the stored paper is untouched and the attempt is recorded as
// failed; nothing is retried automatically.
func (c *Controller) Regenerate(ctx context.Context, ownerID, paperID, feedbackPrompt string) (*models.Paper, error) {
	if err := c.acquire(paperID); err != nil {
		return nil, err
	}
	defer c.release(paperID)

	p, err := c.Get(ctx, ownerID, paperID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusDraft {
		return nil, apperr.InvalidStatef("cannot regenerate paper %s in status %s", paperID, p.Status)
	}

	feedback := regenerationFeedback(p, feedbackPrompt)
	entryID, err := c.ledger.Open(ctx, ownerID, p.Request, feedback)
	if err != nil {
		return nil, err
	}

	questions, err := c.gen.Generate(ctx, p.Request, feedback)
	if err != nil {
		if ferr := c.ledger.Fail(ctx, entryID, err.Error()); ferr != nil {
			log.Printf("Failed to record regeneration failure in history: %v", ferr)
		}
		return nil, apperr.Generation(err)
	}

	p.Questions = questions
	p.Distribution = distribution.ComputeRealized(questions)
	p.RegenerationCount++
	p.UpdatedAt = time.Now().UTC()

	if err := c.store.Update(ctx, p); err != nil {
		if ferr := c.ledger.Fail(ctx, entryID, err.Error()); ferr != nil {
			log.Printf("Failed to record store failure in history: %v", ferr)
		}
		return nil, err
	}
	if err := c.ledger.Complete(ctx, entryID, p.ID); err != nil {
		log.Printf("Failed to close history entry %s: %v", entryID, err)
	}
	log.Printf("Regenerated paper %s (attempt %d): %d questions", p.ID, p.RegenerationCount, len(p.Questions))
	return p, nil
}

// regenerationFeedback frames the previous generation for the generator so
// a regeneration keeps the original constraints while applying feedback.
func regenerationFeedback(p *models.Paper, feedbackPrompt string) string {
	types := make(map[string]struct{})
	levels := make(map[string]struct{})
	for _, q := range p.Questions {
		types[string(q.Category)] = struct{}{}
		levels[q.CognitiveLevel] = struct{}{}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "PREVIOUS GENERATION SUMMARY:\n")
	fmt.Fprintf(&b, "- Generated %d questions worth %d marks total\n", len(p.Questions), p.TotalMarks)
	fmt.Fprintf(&b, "- Question types used: %s\n", strings.Join(utils.SortedKeys(types), ", "))
	fmt.Fprintf(&b, "- Bloom's levels used: %s\n", strings.Join(utils.SortedKeys(levels), ", "))
	if feedbackPrompt != "" {
		fmt.Fprintf(&b, "\nREGENERATION FEEDBACK (apply while keeping the original requirements):\n%s\n", feedbackPrompt)
	} else {
		fmt.Fprintf(&b, "\nREGENERATION GOAL: produce a fresh set of questions with the same structure and total marks.\n")
	}
	return b.String()
}

// Approve freezes a draft paper. Both PDF variants are rendered first; only
// when both artifacts exist does the status flip. A renderer failure leaves
// the paper exactly as it was.
func (c *Controller) Approve(ctx context.Context, ownerID, paperID string) (*models.Paper, error) {
	if err := c.acquire(paperID); err != nil {
		return nil, err
	}
	defer c.release(paperID)

	p, err := c.Get(ctx, ownerID, paperID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.StatusDraft {
		return nil, apperr.InvalidStatef("cannot approve paper %s in status %s", paperID, p.Status)
	}

	var questionPaperID, answerKeyID string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := c.renderer.Render(gctx, p, models.VariantQuestionsOnly)
		questionPaperID = id
		return err
	})
	g.Go(func() error {
		id, err := c.renderer.Render(gctx, p, models.VariantWithAnswers)
		answerKeyID = id
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Render(err)
	}

	now := time.Now().UTC()
	p.Status = models.StatusApproved
	p.Artifacts = &models.ApprovedArtifacts{QuestionPaperID: questionPaperID, AnswerKeyID: answerKeyID}
	p.ApprovedAt = &now
	p.UpdatedAt = now

	if err := c.store.Update(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("Approved paper %s: artifacts %s / %s", p.ID, questionPaperID, answerKeyID)
	return p, nil
}

// CreateEditCopy forks an approved paper into a brand-new draft lineage.
// The copy gets its own identity and a back-reference to the source; the
// source is never mutated again.
func (c *Controller) CreateEditCopy(ctx context.Context, ownerID, approvedPaperID string) (*models.Paper, error) {
	if err := c.acquire(approvedPaperID); err != nil {
		return nil, err
	}
	defer c.release(approvedPaperID)

	source, err := c.Get(ctx, ownerID, approvedPaperID)
	if err != nil {
		return nil, err
	}
	if source.Status != models.StatusApproved {
		return nil, apperr.InvalidStatef("paper %s is %s; only approved papers can be copied for editing", approvedPaperID, source.Status)
	}

	now := time.Now().UTC()
	copied := &models.Paper{
		ID:            uuid.NewString(),
		OwnerID:       source.OwnerID,
		Subject:       source.Subject,
		Department:    source.Department,
		Section:       source.Section,
		Year:          source.Year,
		ExamType:      source.ExamType,
		TotalMarks:    source.TotalMarks,
		Request:       source.Request,
		Questions:     source.Questions,
		Distribution:  distribution.ComputeRealized(source.Questions),
		Status:        models.StatusDraft,
		IsEditCopy:    true,
		SourcePaperID: source.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.store.Insert(ctx, copied); err != nil {
		return nil, err
	}
	log.Printf("Created edit copy %s of approved paper %s", copied.ID, source.ID)
	return copied, nil
}

// Delete removes a paper in any status. History entries referencing it are
// deliberately left alone.
func (c *Controller) Delete(ctx context.Context, ownerID, paperID string) error {
	if err := c.acquire(paperID); err != nil {
		return err
	}
	defer c.release(paperID)
	return c.store.Delete(ctx, ownerID, paperID)
}

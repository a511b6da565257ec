
package paper

import (
	"context"

	"paperforge-server/models"
)

// Store persists papers. Updates replace the whole record so readers never
// observe a partially-written paper.
type Store interface {
	Insert(ctx context.Context, p *models.Paper) error
	Get(ctx context.Context, id string) (*models.Paper, error)
	Update(ctx context.Context, p *models.Paper) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string) ([]models.Paper, error)
	// SearchApproved returns approved papers matching case-insensitive
	// substring filters; empty filters match everything.
	SearchApproved(ctx context.Context, ownerID, subject, department string) ([]models.Paper, error)
}

// GenerationService produces question content from a request. External
// collaborator: the engine treats a call as opaque and atomic.
type GenerationService interface {
	Generate(ctx context.Context, req models.GenerationRequest, feedbackPrompt string) ([]models.Question, error)
}

// DocumentRenderer turns a paper into a stored PDF artifact and returns the
// artifact ID. External collaborator.
type DocumentRenderer interface {
	Render(ctx context.Context, p *models.Paper, variant models.RenderVariant) (string, error)
}

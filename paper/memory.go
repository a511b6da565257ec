
package paper

import (
	"context"
	"sort"
	"strings"
	"sync"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

// MemoryStore keeps papers in process memory. Records are deep-copied on the
// way in and out so a caller can never alias stored state; this is what makes
// edit copies and in-flight mutations safe against accidental sharing.
type MemoryStore struct {
	mu     sync.RWMutex
	papers map[string]*models.Paper
}

// NewMemoryStore returns an empty in-memory paper store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{papers: make(map[string]*models.Paper)}
}

func (s *MemoryStore) Insert(ctx context.Context, p *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[p.ID] = clonePaper(p)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.papers[id]
	if !ok {
		return nil, apperr.NotFoundf("paper %s not found", id)
	}
	return clonePaper(p), nil
}

func (s *MemoryStore) Update(ctx context.Context, p *models.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.papers[p.ID]; !ok {
		return apperr.NotFoundf("paper %s not found", p.ID)
	}
	s.papers[p.ID] = clonePaper(p)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.papers[id]
	if !ok || p.OwnerID != ownerID {
		return apperr.NotFoundf("paper %s not found", id)
	}
	delete(s.papers, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, ownerID string) ([]models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var papers []models.Paper
	for _, p := range s.papers {
		if p.OwnerID == ownerID {
			papers = append(papers, *clonePaper(p))
		}
	}
	sortNewestFirst(papers)
	return papers, nil
}

func (s *MemoryStore) SearchApproved(ctx context.Context, ownerID, subject, department string) ([]models.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject = strings.ToLower(subject)
	department = strings.ToLower(department)
	var papers []models.Paper
	for _, p := range s.papers {
		if p.OwnerID != ownerID || p.Status != models.StatusApproved {
			continue
		}
		if subject != "" && !strings.Contains(strings.ToLower(p.Subject), subject) {
			continue
		}
		if department != "" && !strings.Contains(strings.ToLower(p.Department), department) {
			continue
		}
		papers = append(papers, *clonePaper(p))
	}
	sortNewestFirst(papers)
	return papers, nil
}

func sortNewestFirst(papers []models.Paper) {
	sort.Slice(papers, func(i, j int) bool {
		if papers[i].CreatedAt.Equal(papers[j].CreatedAt) {
			return papers[i].ID < papers[j].ID
		}
		return papers[i].CreatedAt.After(papers[j].CreatedAt)
	})
}

func clonePaper(p *models.Paper) *models.Paper {
	copied := *p
	copied.Questions = cloneQuestions(p.Questions)
	copied.Request.Categories = append([]models.QuestionSpec(nil), p.Request.Categories...)
	copied.Distribution = cloneDistribution(p.Distribution)
	if p.Artifacts != nil {
		artifacts := *p.Artifacts
		copied.Artifacts = &artifacts
	}
	if p.ApprovedAt != nil {
		approvedAt := *p.ApprovedAt
		copied.ApprovedAt = &approvedAt
	}
	return &copied
}

func cloneQuestions(questions []models.Question) []models.Question {
	if questions == nil {
		return nil
	}
	copied := make([]models.Question, len(questions))
	for i, q := range questions {
		copied[i] = q
		copied[i].Options = append([]string(nil), q.Options...)
	}
	return copied
}

func cloneDistribution(d models.DistributionSummary) models.DistributionSummary {
	copied := models.DistributionSummary{
		TotalQuestions:    d.TotalQuestions,
		ByCategory:        make(map[models.QuestionCategory]int, len(d.ByCategory)),
		MarksByCategory:   make(map[models.QuestionCategory]int, len(d.MarksByCategory)),
		ByCognitiveLevel:  make(map[string]int, len(d.ByCognitiveLevel)),
		ByProvenance:      make(map[models.Provenance]int, len(d.ByProvenance)),
		ByLevelProvenance: make(map[string]map[models.Provenance]int, len(d.ByLevelProvenance)),
	}
	for k, v := range d.ByCategory {
		copied.ByCategory[k] = v
	}
	for k, v := range d.MarksByCategory {
		copied.MarksByCategory[k] = v
	}
	for k, v := range d.ByCognitiveLevel {
		copied.ByCognitiveLevel[k] = v
	}
	for k, v := range d.ByProvenance {
		copied.ByProvenance[k] = v
	}
	for level, sources := range d.ByLevelProvenance {
		inner := make(map[models.Provenance]int, len(sources))
		for k, v := range sources {
			inner[k] = v
		}
		copied.ByLevelProvenance[level] = inner
	}
	return copied
}

// Package render turns papers into PDF artifacts.
package render

import (
	"context"
	"time"
)

// Artifact is a rendered document plus the metadata the download endpoint
// needs to serve it.
type Artifact struct {
	ID          string    `json:"id"`
	PaperID     string    `json:"paper_id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArtifactStore persists rendered documents.
type ArtifactStore interface {
	Put(ctx context.Context, a *Artifact) error
	Get(ctx context.Context, id string) (*Artifact, error)
	Delete(ctx context.Context, id string) error
}

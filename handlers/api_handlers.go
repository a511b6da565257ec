package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"paperforge-server/analytics"
	"paperforge-server/apperr"
	"paperforge-server/history"
	"paperforge-server/models"
	"paperforge-server/paper"
	"paperforge-server/render"
)

func ownerID(c *gin.Context) string {
	return c.GetString("user_id")
}

func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CreatePaper generates a new draft paper.
// POST /api/v1/papers
func CreatePaper(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
			return
		}
		p, err := ctrl.Create(c.Request.Context(), ownerID(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"paper":   p,
			"message": "Paper generated successfully",
		})
	}
}

// ListPapers returns the caller's papers, newest first.
// GET /api/v1/papers
func ListPapers(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		papers, err := ctrl.List(c.Request.Context(), ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		entries := make([]models.PaperListEntry, 0, len(papers))
		for _, p := range papers {
			entries = append(entries, models.ListEntry(&p))
		}
		c.JSON(http.StatusOK, gin.H{"papers": entries, "total": len(entries)})
	}
}

// GetPaper returns one paper in full.
// GET /api/v1/papers/:paper_id
func GetPaper(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := ctrl.Get(c.Request.Context(), ownerID(c), c.Param("paper_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// UpdatePaperMetadata patches draft paper metadata.
// PATCH /api/v1/papers/:paper_id/metadata
func UpdatePaperMetadata(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdatePaperMetadataRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
			return
		}
		p, err := ctrl.UpdateMetadata(c.Request.Context(), ownerID(c), c.Param("paper_id"), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"paper": p, "message": "Metadata updated successfully"})
	}
}

// RegeneratePaper replaces a draft paper's questions.
// POST /api/v1/papers/:paper_id/regenerate
func RegeneratePaper(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RegeneratePaperRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request body: %v", err)})
			return
		}
		p, err := ctrl.Regenerate(c.Request.Context(), ownerID(c), c.Param("paper_id"), req.FeedbackPrompt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"paper":              p,
			"regeneration_count": p.RegenerationCount,
			"message":            "Paper regenerated successfully",
		})
	}
}

// ApprovePaper renders both PDFs and freezes the paper.
// POST /api/v1/papers/:paper_id/approve
func ApprovePaper(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := ctrl.Approve(c.Request.Context(), ownerID(c), c.Param("paper_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"paper":     p,
			"artifacts": p.Artifacts,
			"message":   "Paper approved successfully",
		})
	}
}

// DeletePaper removes a paper. Its history entries stay.
// DELETE /api/v1/papers/:paper_id
func DeletePaper(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ctrl.Delete(c.Request.Context(), ownerID(c), c.Param("paper_id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Paper deleted successfully"})
	}
}

// SearchApprovedPapers filters approved papers by subject/department substrings.
// GET /api/v1/approved-papers
func SearchApprovedPapers(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		papers, err := ctrl.SearchApproved(c.Request.Context(), ownerID(c), c.Query("subject"), c.Query("department"))
		if err != nil {
			respondError(c, err)
			return
		}
		entries := make([]models.PaperListEntry, 0, len(papers))
		for _, p := range papers {
			entries = append(entries, models.ListEntry(&p))
		}
		c.JSON(http.StatusOK, gin.H{"papers": entries, "total": len(entries)})
	}
}

// ApprovedPapersSummary aggregates the caller's approved papers.
// GET /api/v1/approved-papers/summary
func ApprovedPapersSummary(ctrl *paper.Controller, engine *analytics.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		owner := ownerID(c)

		var papers []models.Paper
		if paperID := c.Query("paper_id"); paperID != "" {
			p, err := ctrl.Get(ctx, owner, paperID)
			if err != nil {
				respondError(c, err)
				return
			}
			if p.Status != models.StatusApproved {
				respondError(c, apperr.InvalidStatef("paper %s is not approved", paperID))
				return
			}
			papers = []models.Paper{*p}
		} else {
			var err error
			papers, err = ctrl.SearchApproved(ctx, owner, c.Query("subject"), "")
			if err != nil {
				respondError(c, err)
				return
			}
		}

		summary, err := engine.Summarize(ctx, papers, c.Query("custom_prompt"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// CopyPaperForEdit forks an approved paper into a fresh draft.
// POST /api/v1/approved-papers/:paper_id/copy-for-edit
func CopyPaperForEdit(ctrl *paper.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := ctrl.CreateEditCopy(c.Request.Context(), ownerID(c), c.Param("paper_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"paper":           p,
			"source_paper_id": p.SourcePaperID,
			"message":         "Editable copy created successfully",
		})
	}
}

// PaperSuggestions returns model-written improvement suggestions for a paper.
// GET /api/v1/papers/:paper_id/suggestions
func PaperSuggestions(ctrl *paper.Controller, engine *analytics.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		owner := ownerID(c)
		p, err := ctrl.Get(ctx, owner, c.Param("paper_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		approved, err := ctrl.SearchApproved(ctx, owner, "", "")
		if err != nil {
			respondError(c, err)
			return
		}
		text, err := engine.PaperSuggestions(ctx, p, approved)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"paper_id": p.ID, "suggestions": text})
	}
}

// DashboardSummary returns the caller's activity overview.
// GET /api/v1/dashboard-summary
func DashboardSummary(ctrl *paper.Controller, engine *analytics.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		papers, err := ctrl.List(ctx, ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, engine.Dashboard(ctx, papers))
	}
}

// ListHistory returns the caller's generation attempts, newest first.
// GET /api/v1/history
func ListHistory(ledger *history.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := ledger.List(c.Request.Context(), ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": entries, "total": len(entries)})
	}
}

// DeleteHistoryEntry removes one attempt record.
// DELETE /api/v1/history/:history_id
func DeleteHistoryEntry(ledger *history.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ledger.Delete(c.Request.Context(), ownerID(c), c.Param("history_id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "History entry deleted successfully"})
	}
}

// ClearHistory removes all of the caller's attempt records.
// DELETE /api/v1/history
func ClearHistory(ledger *history.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := ledger.ClearAll(c.Request.Context(), ownerID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": deleted, "message": "History cleared successfully"})
	}
}

// DownloadArtifact streams a rendered PDF. Ownership is enforced through
// the owning paper.
// GET /api/v1/downloads/:artifact_id
func DownloadArtifact(ctrl *paper.Controller, artifacts render.ArtifactStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		a, err := artifacts.Get(ctx, c.Param("artifact_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if _, err := ctrl.Get(ctx, ownerID(c), a.PaperID); err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Name))
		c.Data(http.StatusOK, a.ContentType, a.Data)
	}
}


package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperforge-server/apperr"
	"paperforge-server/models"
)

func testRequest() models.GenerationRequest {
	return models.GenerationRequest{
		Subject:    "Databases",
		Department: "CSE",
		ExamType:   models.ExamMid,
		Categories: []models.QuestionSpec{{Category: models.CategoryShort, Count: 5, MarksEach: 2}},
		Provenance: models.ProvenanceRatio{PreviousPercent: 30, CreativePercent: 40, NewPercent: 30},
	}
}

func TestOpenCompleteFlow(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	id, err := ledger.Open(ctx, "teacher-1", testRequest(), "")
	require.NoError(t, err)

	entries, err := ledger.List(ctx, "teacher-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.HistoryInProgress, entries[0].Status)
	assert.Nil(t, entries[0].CompletedAt)

	require.NoError(t, ledger.Complete(ctx, id, "paper-9"))

	entries, err = ledger.List(ctx, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.HistorySuccess, entries[0].Status)
	assert.Equal(t, "paper-9", entries[0].PaperID)
	require.NotNil(t, entries[0].CompletedAt)
}

func TestFailRecordsErrorMessage(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	id, err := ledger.Open(ctx, "teacher-1", testRequest(), "tighten the MCQs")
	require.NoError(t, err)
	require.NoError(t, ledger.Fail(ctx, id, "generator timeout"))

	entries, err := ledger.List(ctx, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, models.HistoryFailed, entries[0].Status)
	assert.Equal(t, "generator timeout", entries[0].ErrorMessage)
	assert.Equal(t, "tighten the MCQs", entries[0].Feedback)
}

func TestTerminalEntriesAreImmutable(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	id, err := ledger.Open(ctx, "teacher-1", testRequest(), "")
	require.NoError(t, err)
	require.NoError(t, ledger.Complete(ctx, id, "paper-1"))

	err = ledger.Complete(ctx, id, "paper-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = ledger.Fail(ctx, id, "too late")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCompleteUnknownEntry(t *testing.T) {
	ledger := NewLedger(NewMemoryStore())
	err := ledger.Complete(context.Background(), "no-such-entry", "paper-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteAndClearAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	ledger := NewLedger(NewMemoryStore())

	mine, err := ledger.Open(ctx, "teacher-1", testRequest(), "")
	require.NoError(t, err)
	_, err = ledger.Open(ctx, "teacher-1", testRequest(), "")
	require.NoError(t, err)
	theirs, err := ledger.Open(ctx, "teacher-2", testRequest(), "")
	require.NoError(t, err)

	// Deleting through the wrong owner does not leak across accounts.
	err = ledger.Delete(ctx, "teacher-2", mine)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, ledger.Delete(ctx, "teacher-1", mine))

	deleted, err := ledger.ClearAll(ctx, "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	others, err := ledger.List(ctx, "teacher-2")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, theirs, others[0].ID)
}

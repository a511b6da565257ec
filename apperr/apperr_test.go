package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsTagSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{Validationf("bad ratio %d", 90), ErrValidation},
		{InvalidStatef("paper is %s", "approved"), ErrInvalidState},
		{Conflictf("busy"), ErrConflict},
		{NotFoundf("missing"), ErrNotFound},
		{Generation(errors.New("model down")), ErrGeneration},
		{Render(errors.New("layout failed")), ErrRender},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.sentinel)
	}
}

func TestCauseIsPreserved(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := Generation(fmt.Errorf("gemini call: %w", cause))
	require.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validationf("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFoundf("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflictf("x")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(InvalidStatef("x")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Generation(errors.New("x"))))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(Render(errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapsEveryKind(t *testing.T) {
	t.Parallel()

	cases := map[error]int{
		Unauthorized("x"):                     http.StatusUnauthorized,
		Forbidden("x"):                        http.StatusForbidden,
		NotFound("x"):                         http.StatusNotFound,
		New(KindInvalidTransition, "x", nil): http.StatusBadRequest,
		Validation("x"):                       http.StatusBadRequest,
		Conflict("x"):                         http.StatusConflict,
		Internal("x", errors.New("db")):       http.StatusInternalServerError,
		errors.New("plain"):                   http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("update status: %w", NotFound("missing"))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, "missing", Message(err, "fallback"))
}

func TestMessageHidesInternalDetails(t *testing.T) {
	t.Parallel()

	err := Internal("query failed", errors.New("sqlite: disk I/O error"))
	assert.Equal(t, "server error", Message(err, "server error"))
	assert.ErrorContains(t, err, "disk I/O")
}

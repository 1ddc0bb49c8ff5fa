package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", NewValidation("x"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("quote", "42"), CodeNotFound, http.StatusNotFound},
		{"transition", NewInvalidTransition("quote", "brouillon", "accepte"), CodeInvalidTransition, http.StatusUnprocessableEntity},
		{"locked", NewDocumentLocked("invoice", "payee"), CodeDocumentLocked, http.StatusUnprocessableEntity},
		{"stale", NewConcurrentModification("quote", "42"), CodeConcurrentModification, http.StatusConflict},
		{"duplicate", NewDuplicate("quote", "number", "DEV-2026-00001"), CodeDuplicate, http.StatusConflict},
		{"rate limited", NewRateLimited(), CodeRateLimited, http.StatusTooManyRequests},
		{"internal", NewInternal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestValidationList_CopiesInput(t *testing.T) {
	in := []string{"a", "b"}
	err := NewValidationList("Données invalides", in)
	in[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, Messages(err))
	assert.True(t, IsValidation(err))
}

func TestMessages(t *testing.T) {
	assert.Nil(t, Messages(errors.New("plain")))
	assert.Equal(t, []string{"Nom requis"}, Messages(NewValidation("Nom requis")))
}

func TestWrappedLookup(t *testing.T) {
	wrapped := fmt.Errorf("load quote: %w", NewNotFound("quote", "42"))

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "42", appErr.Details["id"])
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsCode(wrapped, CodeConflict))
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pg: connection reset")
	err := NewInternal(cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "pg")
}

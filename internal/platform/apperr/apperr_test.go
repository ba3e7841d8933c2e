package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("nom est requis"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("token invalide"), http.StatusUnauthorized},
		{"forbidden", Forbidden("accès refusé"), http.StatusForbidden},
		{"not found", NotFound("patient non trouvé"), http.StatusNotFound},
		{"conflict", Conflict("déjà existant"), http.StatusConflict},
		{"upstream", Upstream(errors.New("dial tcp"), "orthanc injoignable"), http.StatusBadGateway},
		{"unavailable", Unavailable("non configuré"), http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("get patient: %w", NotFound("patient non trouvé")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestMessage_HidesUncategorizedErrors(t *testing.T) {
	assert.Equal(t, "Erreur interne du serveur", Message(errors.New("pq: relation does not exist")))
	assert.Equal(t, "nom est requis", Message(Validation("nom est requis")))
	assert.Equal(t, "nom est requis", Message(fmt.Errorf("create: %w", Validation("nom est requis"))))
}

func TestUpstream_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause, "orthanc injoignable")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.NotErrorIs(t, err, ErrNotFound)
}

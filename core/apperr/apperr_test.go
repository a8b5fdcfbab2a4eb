package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"pwsi/core/apperr"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, 200},
		{"EmptyBatch", apperr.ErrEmptyBatch, 422},
		{"Validation", fmt.Errorf("bad value: %w", apperr.ErrValidation), 422},
		{"NotFound", fmt.Errorf("socials: %w", apperr.ErrNotFound), 404},
		{"Conflict", apperr.ErrConflict, 409},
		{"Unavailable", apperr.ErrUnavailable, 503},
		{"TooFrequent", fmt.Errorf("counter: %w", apperr.ErrTooFrequent), 429},
		{"Store", errors.New("connection reset"), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Status(tt.err))
		})
	}
}

func TestClient(t *testing.T) {
	assert.True(t, apperr.Client(apperr.ErrConflict))
	assert.False(t, apperr.Client(errors.New("boom")))
}

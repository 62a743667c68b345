package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/microgreens/internal/service/dataio"
	"github.com/mamadbah2/microgreens/internal/store"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("client name is required: %w", store.ErrValidation), http.StatusBadRequest},
		{"invalid file", fmt.Errorf("missing headers: %w", dataio.ErrInvalidFile), http.StatusBadRequest},
		{"row error", &dataio.RowError{Row: 3, Message: "bad quantity"}, http.StatusBadRequest},
		{"not found", fmt.Errorf("order X: %w", store.ErrNotFound), http.StatusNotFound},
		{"business rule", fmt.Errorf("completed: %w", store.ErrBusinessRule), http.StatusConflict},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestParseDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	got, err := parseDay("", ist)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDay("2024-06-01", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, ist), *got)

	got, err = parseDay("2024-06-01T10:00:00Z", ist)
	require.NoError(t, err)
	assert.Equal(t, ist, got.Location())
	assert.Equal(t, 15, got.Hour())

	_, err = parseDay("01/06/2024", ist)
	assert.Error(t, err)
}

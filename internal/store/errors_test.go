package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flashmark/flashmark/internal/store"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		isNotFound   bool
		isConflict   bool
		isValidation bool
		isStorage    bool
	}{
		{
			name:       "deck not found is a not found",
			err:        store.ErrDeckNotFound,
			isNotFound: true,
		},
		{
			name:       "card not found is a not found",
			err:        store.ErrCardNotFound,
			isNotFound: true,
		},
		{
			name:       "deck name exists is a conflict",
			err:        store.ErrDeckNameExists,
			isConflict: true,
		},
		{
			name:         "wrapped validation keeps its class",
			err:          fmt.Errorf("%w: front empty", store.ErrValidation),
			isValidation: true,
		},
		{
			name:      "storage error keeps its class",
			err:       store.StorageError("deck", "insert", errors.New("disk full")),
			isStorage: true,
		},
		{
			name: "unrelated error matches nothing",
			err:  errors.New("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.isNotFound, store.IsNotFound(tt.err))
			assert.Equal(t, tt.isConflict, store.IsConflict(tt.err))
			assert.Equal(t, tt.isValidation, store.IsValidation(tt.err))
			assert.Equal(t, tt.isStorage, store.IsStorage(tt.err))
		})
	}
}

func TestStorageErrorCarriesContext(t *testing.T) {
	t.Parallel()

	inner := errors.New("database is locked")
	err := store.StorageError("card", "update", inner)

	assert.ErrorIs(t, err, store.ErrStorage)
	assert.ErrorIs(t, err, inner)

	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "card", storeErr.Entity)
	assert.Equal(t, "update", storeErr.Operation)
	assert.Contains(t, err.Error(), "update card")
	assert.Contains(t, err.Error(), "database is locked")
}

func TestStorageErrorSurvivesWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("applying review: %w",
		store.StorageError("review", "insert", errors.New("io error")))

	assert.True(t, store.IsStorage(err))
	var storeErr *store.StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "review", storeErr.Entity)
}

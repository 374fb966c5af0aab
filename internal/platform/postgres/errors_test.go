package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/flashmark/flashmark/internal/store"
)

func pgError(code string) error {
	return &pgconn.PgError{Code: code, ConstraintName: "decks_name_key"}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "no rows becomes not found",
			err:  sql.ErrNoRows,
			want: store.ErrNotFound,
		},
		{
			name: "unique violation becomes conflict",
			err:  pgError(uniqueViolationCode),
			want: store.ErrConflict,
		},
		{
			name: "foreign key violation becomes validation",
			err:  pgError(foreignKeyViolationCode),
			want: store.ErrValidation,
		},
		{
			name: "check violation becomes validation",
			err:  pgError(checkViolationCode),
			want: store.ErrValidation,
		},
		{
			name: "anything else becomes storage",
			err:  errors.New("connection reset"),
			want: store.ErrStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mapError(tt.err, "deck", "read")
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapErrorWrapsOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.New("tcp timeout")
	got := mapError(fmt.Errorf("query: %w", inner), "deck", "list")
	assert.ErrorIs(t, got, inner)
	assert.ErrorIs(t, got, store.ErrStorage)

	var storeErr *store.StoreError
	assert.ErrorAs(t, got, &storeErr)
	assert.Equal(t, "deck", storeErr.Entity)
	assert.Equal(t, "list", storeErr.Operation)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isUniqueViolation(pgError(uniqueViolationCode)))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", pgError(uniqueViolationCode))))
	assert.False(t, isUniqueViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, isForeignKeyViolation(pgError(foreignKeyViolationCode)))
	assert.False(t, isForeignKeyViolation(pgError(uniqueViolationCode)))
	assert.False(t, isForeignKeyViolation(nil))
}

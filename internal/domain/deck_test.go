package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	t.Run("valid deck", func(t *testing.T) {
		t.Parallel()
		deck, err := NewDeck("Spanish 101")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, deck.ID)
		assert.Equal(t, "Spanish 101", deck.Name)
		assert.False(t, deck.CreatedAt.IsZero())
	})

	t.Run("name is trimmed", func(t *testing.T) {
		t.Parallel()
		deck, err := NewDeck("  Spanish 101  ")
		require.NoError(t, err)
		assert.Equal(t, "Spanish 101", deck.Name)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()
		_, err := NewDeck("   ")
		assert.ErrorIs(t, err, ErrDeckNameEmpty)
	})
}

func TestDeckRename(t *testing.T) {
	t.Parallel()

	t.Run("name is trimmed", func(t *testing.T) {
		t.Parallel()
		deck, err := NewDeck("Spanish")
		require.NoError(t, err)
		require.NoError(t, deck.Rename("  Castilian  "))
		assert.Equal(t, "Castilian", deck.Name)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		t.Parallel()
		deck, err := NewDeck("Spanish")
		require.NoError(t, err)
		assert.ErrorIs(t, deck.Rename("   "), ErrDeckNameEmpty)
	})
}

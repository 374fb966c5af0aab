package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashmark/flashmark/internal/config"
)

func TestSetupLevels(t *testing.T) {
	testCases := []struct {
		configured string
		want       slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo}, // invalid falls back to info
	}

	for _, tc := range testCases {
		t.Run(tc.configured, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{LogLevel: tc.configured})
			require.NoError(t, err)
			require.NotNil(t, log)

			ctx := context.Background()
			assert.True(t, log.Enabled(ctx, tc.want))
			if tc.want > slog.LevelDebug {
				assert.False(t, log.Enabled(ctx, tc.want-4))
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	base := slog.New(slog.NewTextHandler(os.Stderr, nil)).With(slog.String("component", "test"))

	ctx := WithLogger(context.Background(), base)
	assert.Same(t, base, FromContext(ctx))

	// No logger attached: fall back to the default.
	assert.NotNil(t, FromContext(context.Background()))

	// FromContextOrDefault prefers the fallback over the process default.
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, base, FromContextOrDefault(ctx, fallback))
}

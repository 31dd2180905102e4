package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextChainsOnStoredLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(context.Background(), zerolog.New(&buf))

	FromContext(ctx).Error().Str("user_id", "u1").Msg("save failed")

	require.NotZero(t, buf.Len())
	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"user_id":"u1"`)
}

func TestFromContextWithoutLoggerIsDisabled(t *testing.T) {
	for _, ctx := range []context.Context{context.Background(), nil} {
		logger := FromContext(ctx)
		require.NotNil(t, logger)
		assert.Equal(t, zerolog.Disabled, logger.GetLevel())
		logger.Info().Msg("dropped")
	}
}

func TestComponentTagsLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(zerolog.New(&buf), "quiz")
	logger.Info().Msg("ready")
	assert.Contains(t, buf.String(), `"component":"quiz"`)
}

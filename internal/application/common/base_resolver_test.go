package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/application/common"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

func TestResolveBase(t *testing.T) {
	bases := helpers.NewMockBaseRepository()
	bases.AddBase("W2N1", 5)
	resolver := common.NewBaseResolver(bases)

	base, err := resolver.ResolveBase(context.Background(), "W2N1")
	require.NoError(t, err)
	assert.Equal(t, 5, base.Level)

	for _, name := range []string{"", "W9N9"} {
		_, err := resolver.ResolveBase(context.Background(), name)
		var validation *shared.ValidationError
		assert.True(t, errors.As(err, &validation), name)
	}
}

func TestLoggerFromContext_DefaultsToNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		common.LoggerFromContext(context.Background()).Log("INFO", "dropped", nil)
	})

	logger := &helpers.RecordingLogger{}
	ctx := common.WithLogger(context.Background(), logger)
	common.LoggerFromContext(ctx).Log("INFO", "kept", nil)
	assert.Equal(t, []string{"kept"}, logger.Messages())
}

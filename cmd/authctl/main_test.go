package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Usage(t *testing.T) {
	t.Setenv("CREDSTORE_DRIVER", "memory")

	assert.ErrorIs(t, run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"bogus"}), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"login"}), errUsage)
	assert.ErrorIs(t, run(context.Background(), []string{"get", "a", "b"}), errUsage)
}

func TestRun_OfflineCommands(t *testing.T) {
	t.Setenv("CREDSTORE_DRIVER", "memory")

	require.NoError(t, run(context.Background(), []string{"keygen"}))
	require.NoError(t, run(context.Background(), []string{"status"}))
	require.NoError(t, run(context.Background(), []string{"logout"}))
	assert.Error(t, run(context.Background(), []string{"whoami"}), "no saved session")
}

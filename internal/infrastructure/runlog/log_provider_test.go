package runlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grochmal/harmonia/internal/infrastructure/runlog"
)

func TestLogProviderWritesTimestampedLines(t *testing.T) {
	dir := t.TempDir()
	factory, err := runlog.NewLogProviderFactory("file://" + dir + "/{version}/{name}.log")
	require.NoError(t, err)

	lp, err := factory.Build("v1", "worker", false)
	require.NoError(t, err)

	lp.Msg("hello")
	require.NoError(t, lp.Close())

	content, err := os.ReadFile(filepath.Join(dir, "v1", "worker.log"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(content)), "| hello"))
}

func TestLogProviderCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	factory, err := runlog.NewLogProviderFactory("file://" + dir + "/{version}/{name}.log")
	require.NoError(t, err)
	lp, err := factory.Build("v1", "worker", false)
	require.NoError(t, err)

	require.NoError(t, lp.Close())
	require.NoError(t, lp.Close())
}

func TestLogProviderFactoryRejectsUntemplatedURI(t *testing.T) {
	_, err := runlog.NewLogProviderFactory("file://./logs/missing-tokens.log")
	require.Error(t, err)
}

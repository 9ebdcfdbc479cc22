package runlog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grochmal/harmonia/internal/infrastructure/runlog"
)

// TestMetricFlushFormat covers scenario 7 of §8: logging params and
// metrics then releasing the provider writes the exact expected lines.
func TestMetricFlushFormat(t *testing.T) {
	dir := t.TempDir()
	factory, err := runlog.NewMetricFactory("file://" + dir + "/{version}/{name}.metrics")
	require.NoError(t, err)

	mp, err := factory.Build("v1", "train", nil)
	require.NoError(t, err)

	mp.LogParam("momentum", "adaptive")
	mp.LogMetric("loss", 0.1)
	mp.LogMetric("loss", 0.07)

	require.NoError(t, mp.Close())

	content, err := os.ReadFile(filepath.Join(dir, "v1", "train.metrics"))
	require.NoError(t, err)
	assert.Equal(t, "momentum: adaptive\nloss: 0.1000,0.0700\n", string(content))
}

func TestMetricProviderCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	factory, err := runlog.NewMetricFactory("file://" + dir + "/{version}/{name}.metrics")
	require.NoError(t, err)
	mp, err := factory.Build("v1", "train", nil)
	require.NoError(t, err)

	require.NoError(t, mp.Close())
	require.NoError(t, mp.Close())
}

func TestMetricProviderGetters(t *testing.T) {
	dir := t.TempDir()
	factory, err := runlog.NewMetricFactory("file://" + dir + "/{version}/{name}.metrics")
	require.NoError(t, err)
	mp, err := factory.Build("v1", "train", nil)
	require.NoError(t, err)
	defer mp.Close()

	mp.LogParam("momentum", "adaptive")
	mp.LogMetric("loss", 0.5)
	mp.LogMetric("loss", 0.25)

	assert.Equal(t, "adaptive", mp.GetParam("momentum"))
	assert.Equal(t, []float64{0.5, 0.25}, mp.GetMetric("loss"))
}

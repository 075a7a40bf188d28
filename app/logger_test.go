package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMakeLogger(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	assert.Error(t, MakeLogger("verbose", ""))

	p := filepath.Join(t.TempDir(), "api.log")
	require.NoError(t, MakeLogger("info", p))

	zap.L().Debug("hidden")
	zap.L().Info("Server starting", zap.String("addr", ":8080"))
	zap.L().Sync()

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"Server starting"`)
	assert.NotContains(t, string(b), "hidden")
}

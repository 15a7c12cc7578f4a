package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX utilities")
	}
}

func TestRun_Success(t *testing.T) {
	skipOnWindows(t)
	r := New(10*time.Second, 1<<20)

	res, err := r.Run(context.Background(), []string{"echo", "hello"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", string(res.Stdout))
	assert.Empty(t, res.Stderr)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Truncated)
}

func TestRun_CapturesStderrSeparately(t *testing.T) {
	skipOnWindows(t)
	r := New(10*time.Second, 1<<20)

	res, err := r.Run(context.Background(), []string{"/bin/sh", "-c", "echo out; echo err >&2; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	r := New(10*time.Second, 1<<20)

	res, err := r.Run(context.Background(), []string{"/bin/sh", "-c", "exit 1"})
	require.NoError(t, err)
	assert.NotEqual(t, 0, res.ExitCode)
}

func TestRun_BinaryNotFound(t *testing.T) {
	r := New(10*time.Second, 1<<20)

	_, err := r.Run(context.Background(), []string{"nonexistent-binary-xyz-123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent-binary-xyz-123")
}

func TestRun_EmptyArgv(t *testing.T) {
	r := New(10*time.Second, 1<<20)

	_, err := r.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRun_Dir(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	sub := filepath.Join(dir, "subdir")
	require.NoError(t, os.Mkdir(sub, 0o755))

	r := &Runner{Dir: sub, Timeout: 10 * time.Second}
	res, err := r.Run(context.Background(), []string{"pwd"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(string(res.Stdout)), "subdir"), "stdout = %q", res.Stdout)
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)
	r := New(100*time.Millisecond, 1<<20)

	start := time.Now()
	_, err := r.Run(context.Background(), []string{"sleep", "10"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_OutputTruncation(t *testing.T) {
	skipOnWindows(t)
	r := New(10*time.Second, 100)

	res, err := r.Run(context.Background(), []string{"/bin/sh", "-c", "dd if=/dev/zero bs=200 count=1 2>/dev/null"})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.LessOrEqual(t, len(res.Stdout), 100)
}

func TestRun_ZeroValueUsesDefaults(t *testing.T) {
	skipOnWindows(t)
	var r Runner

	res, err := r.Run(context.Background(), []string{"true"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
}

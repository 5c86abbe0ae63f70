//go:build linux || darwin

package dirwatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countLines returns the number of times marker occurs in the file at path.
// A missing file counts as zero occurrences.
func countLines(path, marker string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return strings.Count(string(data), marker)
}

func TestDriverRunsRealCommand(t *testing.T) {
	watched := t.TempDir()
	// The log lives outside the watched tree so the command's own writes do
	// not retrigger it.
	out := filepath.Join(t.TempDir(), "runs.log")

	drv, err := NewDriver(Config{
		Directory: watched,
		Command:   []string{"/bin/sh", "-c", "echo run >> " + out},
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- drv.Run(ctx) }()

	// The initial run happens with no filesystem change at all.
	require.Eventually(t, func() bool { return countLines(out, "run") == 1 },
		5*time.Second, 20*time.Millisecond)

	// A change triggers a follow-up run, and the run count settles instead
	// of growing without bound.
	require.NoError(t, os.WriteFile(filepath.Join(watched, "input.txt"), []byte("x"), 0o644))

	var last int
	require.Eventually(t, func() bool {
		n := countLines(out, "run")
		settled := n >= 2 && n == last
		last = n
		return settled
	}, 10*time.Second, 300*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not shut down")
	}
}

func TestDriverKillModeRestartsLongCommand(t *testing.T) {
	watched := t.TempDir()
	out := filepath.Join(t.TempDir(), "starts.log")

	// Each invocation records its start, then blocks far longer than the
	// test runs.
	drv, err := NewDriver(Config{
		Directory: watched,
		Kill:      true,
		Command:   []string{"/bin/sh", "-c", "echo start >> " + out + "; sleep 60"},
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- drv.Run(ctx) }()

	require.Eventually(t, func() bool { return countLines(out, "start") == 1 },
		5*time.Second, 20*time.Millisecond)

	// A change kills the blocked invocation and starts a replacement.
	require.NoError(t, os.WriteFile(filepath.Join(watched, "src.c"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return countLines(out, "start") >= 2 },
		10*time.Second, 20*time.Millisecond)

	// Shutdown ends the blocked replacement too; nothing is left to leak.
	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrInterrupted)
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not shut down with a blocked command running")
	}
}

func TestDriverReportsFailureAndKeepsGoing(t *testing.T) {
	watched := t.TempDir()
	out := filepath.Join(t.TempDir(), "attempts.log")

	drv, err := NewDriver(Config{
		Directory: watched,
		Command:   []string{"/bin/sh", "-c", "echo attempt >> " + out + "; exit 7"},
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- drv.Run(ctx) }()

	require.Eventually(t, func() bool { return countLines(out, "attempt") == 1 },
		5*time.Second, 20*time.Millisecond)

	// The failing exit is logged, not fatal: the next change runs it again.
	require.NoError(t, os.WriteFile(filepath.Join(watched, "go.sum"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return countLines(out, "attempt") >= 2 },
		10*time.Second, 20*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-errCh, ErrInterrupted)
}

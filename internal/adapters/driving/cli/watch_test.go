package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [course-id] [directory]", watchCmd.Use)
}

func TestWatchCmd_RejectsInvalidType(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	// Reset the context cobra stamped onto watchCmd; ExecuteC only
	// propagates the root context to a subcommand whose ctx is nil.
	defer func() { watchDocType = "note"; watchCmd.SetContext(nil) }()

	_, err := executeCommand("watch", "--type", "essay", "course1", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document type")
}

func TestWatchCmd_StopsOnContextCancel(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"watch", "course1", t.TempDir()})
	defer rootCmd.SetArgs(nil)

	done := make(chan error, 1)
	go func() {
		done <- rootCmd.ExecuteContext(ctx)
	}()

	// Let the watcher start, then cancel as an interrupt would.
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "press Ctrl+C to stop")
	case <-time.After(2 * time.Second):
		t.Fatal("watch command did not stop after context cancellation")
	}
}

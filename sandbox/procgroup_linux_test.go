//go:build linux

package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processGone reports whether pid has exited. Zombies count as gone since
// nothing is left running.
func processGone(pid int) bool {
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	// The state follows the parenthesised command name
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) > 0 && (fields[0] == "Z" || fields[0] == "X")
}

func readChildPID(t *testing.T, pidFile string) int {
	t.Helper()
	var data []byte
	require.Eventually(t, func() bool {
		var err error
		data, err = os.ReadFile(pidFile)
		return err == nil && strings.TrimSpace(string(data)) != ""
	}, 2*time.Second, 10*time.Millisecond)

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	return pid
}

func TestLocalProcessGroupIsKilled(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("/proc not available")
	}

	t.Run("OnTimeout", func(t *testing.T) {
		executor, root := newShellExecutor(t, 500*time.Millisecond)
		pidFile := filepath.Join(t.TempDir(), "child.pid")

		code := fmt.Sprintf("sleep 73191 &\necho $! > %s\nwait", pidFile)
		result := executor.Execute(context.Background(), ExecuteRequest{RunID: "r", Code: code})
		require.True(t, result.TimedOut, result.Output)

		pid := readChildPID(t, pidFile)
		assert.Eventually(t, func() bool { return processGone(pid) }, 2*time.Second, 20*time.Millisecond,
			"child %d of a timed-out program must not survive", pid)
		assertArenaEmpty(t, root)
	})

	t.Run("OnTimeoutWithForegroundChild", func(t *testing.T) {
		executor, _ := newShellExecutor(t, 300*time.Millisecond)
		pidFile := filepath.Join(t.TempDir(), "child.pid")

		// The shell is blocked on a foreground child that keeps the output pipes open
		code := fmt.Sprintf("sh -c 'echo $$ > %s; exec sleep 73192'\necho x", pidFile)
		start := time.Now()
		result := executor.Execute(context.Background(), ExecuteRequest{RunID: "r", Code: code})
		require.True(t, result.TimedOut, result.Output)
		assert.Less(t, time.Since(start), WaitDelay, "killing the group must release the pipes at once")

		pid := readChildPID(t, pidFile)
		assert.Eventually(t, func() bool { return processGone(pid) }, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("DetachedChildAfterCleanExit", func(t *testing.T) {
		executor, _ := newShellExecutor(t, 5*time.Second)
		pidFile := filepath.Join(t.TempDir(), "child.pid")

		code := fmt.Sprintf("sleep 73193 >/dev/null 2>&1 &\necho $! > %s\necho done", pidFile)
		result := executor.Execute(context.Background(), ExecuteRequest{RunID: "r", Code: code})
		require.True(t, result.Success, result.Output)
		assert.Equal(t, "done\n", result.Output)

		pid := readChildPID(t, pidFile)
		assert.Eventually(t, func() bool { return processGone(pid) }, 2*time.Second, 20*time.Millisecond)
	})
}

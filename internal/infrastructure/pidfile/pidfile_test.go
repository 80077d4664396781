package pidfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/kanban-go/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireWritesCurrentPID(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "runner.pid")
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	pid, err := pf.Owner()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, pf.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPIDFile_RejectsLiveOwner(t *testing.T) {
	// Arrange: PID 1 is always alive
	path := filepath.Join(t.TempDir(), "runner.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	var running *pidfile.AlreadyRunningError
	require.ErrorAs(t, err, &running)
	assert.Equal(t, 1, running.PID)
}

func TestPIDFile_ReplacesStaleFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "runner.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid\n"), 0o644))
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))
}

func TestPIDFile_ReleaseMissingFileIsNoop(t *testing.T) {
	pf := pidfile.New(filepath.Join(t.TempDir(), "missing.pid"))
	assert.NoError(t, pf.Release())
}

package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/infrastructure/pidfile"
)

func TestAcquire_WritesOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.pid")
	lock := pidfile.New(path)

	require.NoError(t, lock.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))

	require.NoError(t, lock.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquire_ReplacesStaleFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "garbage", content: "not-a-pid\n"},
		{name: "dead process", content: "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "planner.pid")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			require.NoError(t, pidfile.New(path).Acquire())
		})
	}
}

func TestAcquire_RefusesLiveProcess(t *testing.T) {
	// pid 1 is always alive
	path := filepath.Join(t.TempDir(), "planner.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0644))

	err := pidfile.New(path).Acquire()

	assert.ErrorIs(t, err, pidfile.ErrAlreadyRunning)
}

func TestRelease_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, pidfile.New(filepath.Join(t.TempDir(), "none.pid")).Release())
}

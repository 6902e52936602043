package history_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvus-sh/shell/internal/history"
)

func TestBuffer_PushTruncatesFromFront(t *testing.T) {
	buf := history.New(3, "")
	for _, cmd := range []string{"a", "b", "c", "d", "e"} {
		buf.Push(cmd)
	}
	assert.Equal(t, []string{"c", "d", "e"}, buf.Entries())
}

func TestBuffer_LoadMissingFileIsNotAnError(t *testing.T) {
	buf := history.New(10, filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NoError(t, buf.Load())
	assert.Empty(t, buf.Entries())
}

func TestBuffer_LoadReadsExistingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist")
	os.WriteFile(path, []byte("ls\ncd /tmp\npwd\n"), 0644)

	buf := history.New(10, path)
	assert.NoError(t, buf.Load())
	assert.Equal(t, []string{"ls", "cd /tmp", "pwd"}, buf.Entries())
}

func TestBuffer_ClearEmptiesBufferAndFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist")
	buf := history.New(10, path)
	buf.Push("ls")
	assert.NoError(t, buf.WriteFile(path))

	assert.NoError(t, buf.Clear())
	assert.Empty(t, buf.Entries())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Empty(t, data)
}

func TestBuffer_AppendFileOnlyWritesSinceCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist")
	buf := history.New(10, path)
	buf.Push("first")
	assert.NoError(t, buf.WriteFile(path)) // advances checkpoint to 1

	buf.Push("second")
	buf.Push("third")
	assert.NoError(t, buf.AppendFile(path))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "first\nsecond\nthird\n", string(data))
}

func TestBuffer_PersistOnExitAppendsSinceCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist")
	os.WriteFile(path, []byte("old\n"), 0644)

	buf := history.New(10, path)
	assert.NoError(t, buf.Load())
	buf.Push("new")

	assert.NoError(t, buf.PersistOnExit())

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestExpandEvent_BangBang(t *testing.T) {
	entries := []string{"ls", "cd /tmp", "pwd"}
	got, err := history.ExpandEvent(entries, "!!")
	assert.NoError(t, err)
	assert.Equal(t, "pwd", got)
}

func TestExpandEvent_BangN(t *testing.T) {
	entries := []string{"ls", "cd /tmp", "pwd"}
	got, err := history.ExpandEvent(entries, "!2")
	assert.NoError(t, err)
	assert.Equal(t, "cd /tmp", got)
}

func TestExpandEvent_BangMinusN(t *testing.T) {
	entries := []string{"ls", "cd /tmp", "pwd"}
	got, err := history.ExpandEvent(entries, "!-2")
	assert.NoError(t, err)
	assert.Equal(t, "cd /tmp", got)
}

func TestExpandEvent_OutOfRangeIsNotFound(t *testing.T) {
	entries := []string{"ls"}
	for _, line := range []string{"!!", "!5", "!-5"} {
		_, err := history.ExpandEvent(nil, line)
		assert.ErrorIs(t, err, history.ErrEventNotFound)
		_, err = history.ExpandEvent(entries, line)
		if line != "!!" {
			assert.ErrorIs(t, err, history.ErrEventNotFound)
		}
	}
}

func TestExpandEvent_PlainLinePassesThrough(t *testing.T) {
	got, err := history.ExpandEvent(nil, "echo hi")
	assert.NoError(t, err)
	assert.Equal(t, "echo hi", got)
}

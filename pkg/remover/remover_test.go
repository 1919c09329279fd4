package remover

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/filesystem"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vars.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRemoveBlock(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		variable    string
		want        string
		wantRemoved int
	}{
		{
			name:        "block with indented continuation",
			input:       "app_port: 8080\n  - a\n  - b\nnext_key: 1\nother: 2\n",
			variable:    "app_port",
			want:        "next_key: 1\nother: 2\n",
			wantRemoved: 3,
		},
		{
			name:        "single line file",
			input:       "foo: bar",
			variable:    "foo",
			want:        "",
			wantRemoved: 1,
		},
		{
			name:        "no match",
			input:       "a: 1\nb:\n  c: 2\n",
			variable:    "missing",
			want:        "a: 1\nb:\n  c: 2\n",
			wantRemoved: 0,
		},
		{
			name:        "partial name is not a match",
			input:       "timeout_ms: 5\ntimeout: 30\n",
			variable:    "timeout",
			want:        "timeout_ms: 5\n",
			wantRemoved: 1,
		},
		{
			name:        "nested key is not a match",
			input:       "parent:\n  timeout: 1\ntimeout: 30\n",
			variable:    "timeout",
			want:        "parent:\n  timeout: 1\n",
			wantRemoved: 1,
		},
		{
			name:        "only the first block is removed",
			input:       "x: 1\ny: 2\nx: 3\n",
			variable:    "x",
			want:        "y: 2\nx: 3\n",
			wantRemoved: 1,
		},
		{
			name:        "blank line ends the block and is kept",
			input:       "users:\n  - alice\n\n  - bob\nz: 1\n",
			variable:    "users",
			want:        "\n  - bob\nz: 1\n",
			wantRemoved: 2,
		},
		{
			name:        "tab indented continuation",
			input:       "script: |\n\techo hi\n\techo bye\nend: true\n",
			variable:    "script",
			want:        "end: true\n",
			wantRemoved: 3,
		},
		{
			name:        "block extends to end of file",
			input:       "keep: 1\nusers:\n  - alice\n  - bob",
			variable:    "users",
			want:        "keep: 1\n",
			wantRemoved: 3,
		},
		{
			name:        "crlf line endings are preserved",
			input:       "a: 1\r\nb:\r\n  c: 2\r\nd: 3\r\n",
			variable:    "b",
			want:        "a: 1\r\nd: 3\r\n",
			wantRemoved: 2,
		},
		{
			name:        "comment lines at column 0 end the block",
			input:       "a:\n  b: 1\n# trailing comment\nc: 2\n",
			variable:    "a",
			want:        "# trailing comment\nc: 2\n",
			wantRemoved: 2,
		},
		{
			name:        "sequence items at column 0 are not part of the block",
			input:       "foo:\n- a\n- b\nbar: 1\n",
			variable:    "foo",
			want:        "- a\n- b\nbar: 1\n",
			wantRemoved: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := strings.SplitAfter(tt.input, "\n")
			if lines[len(lines)-1] == "" {
				lines = lines[:len(lines)-1]
			}

			kept, removed := RemoveBlock(lines, tt.variable)

			assert.Equal(t, tt.want, strings.Join(kept, ""))
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestRemover_Remove_BlockBoundary(t *testing.T) {
	path := writeFile(t, "---\napp_port: 8080\n    - 1\n    - 2\nnext_key: 1\nlast: true\n")

	require.NoError(t, New().Remove(path, "app_port"))

	assert.Equal(t, "---\nnext_key: 1\nlast: true\n", readFile(t, path))
}

func TestRemover_Remove_SingleLineFileBecomesEmpty(t *testing.T) {
	path := writeFile(t, "foo: bar")

	require.NoError(t, New().Remove(path, "foo"))

	assert.Empty(t, readFile(t, path))
}

func TestRemover_Remove_NoMatchIsByteIdentical(t *testing.T) {
	content := "# comment\r\nkey: value\n\n  odd indentation\nlast: 1"
	path := writeFile(t, content)

	require.NoError(t, New().Remove(path, "missing"))

	assert.Equal(t, content, readFile(t, path))
}

func TestRemover_Remove_KeepsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on Windows")
	}

	path := writeFile(t, "a: 1\nb: 2\n")
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, New().Remove(path, "a"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, "b: 2\n", readFile(t, path))
}

func TestRemover_Remove_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")

	err := New().Remove(path, "a")

	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrRemoval)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "a failed read must not create the file")
}

type failingWriteFS struct {
	filesystem.OSFileSystem
}

func (failingWriteFS) WriteFileAtomic(string, []byte, os.FileMode) error {
	return errors.New("disk full")
}

func TestRemover_Remove_WriteFailureLeavesFileIntact(t *testing.T) {
	path := writeFile(t, "a: 1\nb: 2\n")

	err := New(WithFileSystem(failingWriteFS{})).Remove(path, "a")

	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrRemoval)
	assert.Equal(t, "a: 1\nb: 2\n", readFile(t, path))
}

func TestRemover_Remove_WithLock(t *testing.T) {
	path := writeFile(t, "a: 1\nb: 2\n")

	require.NoError(t, New(WithLock(true)).Remove(path, "a"))

	assert.Equal(t, "b: 2\n", readFile(t, path))
	assert.FileExists(t, path+".lock")
}

func TestRemover_Remove_LockFileKeepsExcludingOtherRuns(t *testing.T) {
	path := writeFile(t, "a: 1\nb: 2\nc: 3\n")

	// A first run leaves the lock file behind.
	require.NoError(t, New(WithLock(true)).Remove(path, "a"))

	// Another run now holds the same lock file.
	holder := flock.New(path + ".lock")
	locked, err := holder.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer holder.Unlock()

	r := New(WithLock(true), WithLockRetries(2))
	r.lockRetryDelay = 0

	err = r.Remove(path, "b")

	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrFileLocked)
	assert.Equal(t, "b: 2\nc: 3\n", readFile(t, path))
}

func TestRemover_Remove_LockedByAnotherProcess(t *testing.T) {
	path := writeFile(t, "a: 1\nb: 2\n")

	other := flock.New(path + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	r := New(WithLock(true), WithLockRetries(2))
	r.lockRetryDelay = 0

	err = r.Remove(path, "a")

	require.Error(t, err)
	assert.ErrorIs(t, err, errUtils.ErrFileLocked)
	assert.ErrorIs(t, err, errUtils.ErrRemoval)
	assert.Equal(t, "a: 1\nb: 2\n", readFile(t, path))
}

package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPathSpecFromFiles(t *testing.T) {
	tmp := t.TempDir()
	a := writeFile(t, filepath.Join(tmp, "a.txt"), "1")
	b := writeFile(t, filepath.Join(tmp, "sub", "b.txt"), "2")

	spec, err := PathSpecFromFiles([]string{a, b})
	require.NoError(t, err)
	assert.Len(t, spec, 2)
	assert.Equal(t, a, spec["a.txt"])
	assert.Equal(t, b, spec["b.txt"])
}

func TestPathSpecFromFiles_DuplicateBasename(t *testing.T) {
	tmp := t.TempDir()
	first := writeFile(t, filepath.Join(tmp, "one", "same.txt"), "1")
	second := writeFile(t, filepath.Join(tmp, "two", "same.txt"), "2")

	_, err := PathSpecFromFiles([]string{first, second})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestPathSpecFromFiles_Empty(t *testing.T) {
	_, err := PathSpecFromFiles(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPathSpecFromMap(t *testing.T) {
	spec, err := PathSpecFromMap(map[string]string{
		"x/same.txt": "/tmp/one/same.txt",
		"y/same.txt": "/tmp/two/same.txt",
	})
	require.NoError(t, err)
	assert.Len(t, spec, 2)

	_, err = PathSpecFromMap(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPathSpecFromPath_SingleFile(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, filepath.Join(tmp, "solo.bin"), "data")

	spec, err := PathSpecFromPath(path)
	require.NoError(t, err)
	require.Len(t, spec, 1)
	assert.Equal(t, path, spec["solo.bin"])
}

func TestPathSpecFromPath_DirectoryWalk(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "top.txt"), "t")
	writeFile(t, filepath.Join(tmp, "nested", "deep", "leaf.txt"), "l")

	spec, err := PathSpecFromPath(tmp)
	require.NoError(t, err)
	assert.Len(t, spec, 2)
	assert.Equal(t, filepath.Join(tmp, "top.txt"), spec["top.txt"])
	assert.Equal(t, filepath.Join(tmp, "nested", "deep", "leaf.txt"), spec["nested/deep/leaf.txt"])
}

func TestPathSpecFromPath_FollowsSymlinks(t *testing.T) {
	tmp := t.TempDir()
	target := writeFile(t, filepath.Join(tmp, "target", "real.txt"), "r")

	root := filepath.Join(tmp, "root")
	require.NoError(t, os.MkdirAll(root, 0o755))
	link := filepath.Join(root, "linked")
	if err := os.Symlink(filepath.Join(tmp, "target"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	spec, err := PathSpecFromPath(root)
	require.NoError(t, err)
	require.Len(t, spec, 1)
	assert.Equal(t, filepath.Join(link, "real.txt"), spec["linked/real.txt"])
	_ = target
}

func TestPathSpecFromPath_Invalid(t *testing.T) {
	_, err := PathSpecFromPath(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPathSpecFromPath_EmptyDir(t *testing.T) {
	_, err := PathSpecFromPath(t.TempDir())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPathSpecSortedLogicalPaths(t *testing.T) {
	spec := PathSpec{"b": "/b", "a": "/a", "c": "/c"}
	assert.Equal(t, []string{"a", "b", "c"}, spec.SortedLogicalPaths())
}

package artifact

import (
	"context"
	"crypto/md5"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildManifest_SpecExample(t *testing.T) {
	tmp := t.TempDir()
	a := writeFile(t, filepath.Join(tmp, "a.txt"), "1")
	b := writeFile(t, filepath.Join(tmp, "b.txt"), "2")

	spec, err := PathSpecFromMap(map[string]string{"a.txt": a, "b.txt": b})
	require.NoError(t, err)

	manifest, err := BuildManifest(context.Background(), spec, nil)
	require.NoError(t, err)

	entries := manifest.Entries()
	require.Len(t, entries, 2)

	hashA := HashBytes([]byte("1"))
	hashB := HashBytes([]byte("2"))
	assert.Equal(t, hashA, entries[0].Hash)
	assert.Equal(t, hashB, entries[1].Hash)
	assert.True(t, filepath.IsAbs(entries[0].LocalPath))

	fold := md5.New()
	for _, pair := range [][2]string{{"a.txt", hashA}, {"b.txt", hashB}} {
		fold.Write([]byte(pair[0]))
		fold.Write([]byte{0})
		fold.Write([]byte(pair[1]))
		fold.Write([]byte{0})
	}
	assert.Equal(t, fmt.Sprintf("%x", fold.Sum(nil)), manifest.Digest())
}

func TestBuildManifest_DigestIndependentOfInputForm(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), "alpha")
	writeFile(t, filepath.Join(tmp, "b.txt"), "beta")

	fromDir, err := PathSpecFromPath(tmp)
	require.NoError(t, err)
	fromList, err := PathSpecFromFiles([]string{
		filepath.Join(tmp, "a.txt"),
		filepath.Join(tmp, "b.txt"),
	})
	require.NoError(t, err)
	fromMap, err := PathSpecFromMap(map[string]string{
		"a.txt": filepath.Join(tmp, "a.txt"),
		"b.txt": filepath.Join(tmp, "b.txt"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	manifestDir, err := BuildManifest(ctx, fromDir, nil)
	require.NoError(t, err)
	manifestList, err := BuildManifest(ctx, fromList, nil)
	require.NoError(t, err)
	manifestMap, err := BuildManifest(ctx, fromMap, nil)
	require.NoError(t, err)

	assert.Equal(t, manifestDir.Digest(), manifestList.Digest())
	assert.Equal(t, manifestDir.Digest(), manifestMap.Digest())
}

func TestBuildManifest_DigestOrderIndependent(t *testing.T) {
	tmp := t.TempDir()
	paths := map[string]string{}
	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("file-%02d.txt", i)
		paths[name] = writeFile(t, filepath.Join(tmp, name), fmt.Sprintf("content %d", i))
	}

	spec, err := PathSpecFromMap(paths)
	require.NoError(t, err)

	ctx := context.Background()
	// serial and maximally parallel hashing must agree
	serial, err := BuildManifest(ctx, spec, nil, WithHashConcurrency(1))
	require.NoError(t, err)
	parallel, err := BuildManifest(ctx, spec, nil, WithHashConcurrency(16))
	require.NoError(t, err)
	assert.Equal(t, serial.Digest(), parallel.Digest())
}

func TestBuildManifest_DigestChangesWithContent(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, filepath.Join(tmp, "a.txt"), "original")

	spec, err := PathSpecFromMap(map[string]string{"a.txt": path})
	require.NoError(t, err)

	before, err := BuildManifest(context.Background(), spec, nil)
	require.NoError(t, err)

	writeFile(t, path, "originaX")
	after, err := BuildManifest(context.Background(), spec, nil)
	require.NoError(t, err)

	assert.NotEqual(t, before.Digest(), after.Digest())
}

func TestBuildManifest_AmbiguousMetadata(t *testing.T) {
	tmp := t.TempDir()
	metaPath := writeFile(t, filepath.Join(tmp, MetadataFilename), `{"k": "v"}`)

	spec, err := PathSpecFromMap(map[string]string{MetadataFilename: metaPath})
	require.NoError(t, err)

	_, err = BuildManifest(context.Background(), spec, MetadataFromDocument(map[string]any{"k": "v"}))
	assert.ErrorIs(t, err, ErrAmbiguousMetadata)
}

func TestBuildManifest_ReservedPathBecomesMetadata(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, MetadataFilename), `{"run": 7}`)
	writeFile(t, filepath.Join(tmp, "data.txt"), "d")

	spec, err := PathSpecFromPath(tmp)
	require.NoError(t, err)

	manifest, err := BuildManifest(context.Background(), spec, nil)
	require.NoError(t, err)
	require.NotNil(t, manifest.Metadata())
	assert.Equal(t, map[string]any{"run": float64(7)}, manifest.Metadata().Value())

	entries := manifest.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EntryMetadata, entries[0].Kind)
	assert.Equal(t, MetadataFilename, entries[0].Path)
	assert.Empty(t, entries[0].LocalPath)
	assert.Equal(t, EntryFile, entries[1].Kind)

	// the synthetic entry serves its bytes without touching disk
	data, err := entries[0].Content()
	require.NoError(t, err)
	assert.Equal(t, HashBytes(data), entries[0].Hash)
}

func TestBuildManifest_ExplicitMetadataEntry(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, filepath.Join(tmp, "data.txt"), "d")

	spec, err := PathSpecFromMap(map[string]string{"data.txt": path})
	require.NoError(t, err)

	meta := MetadataFromDocument(map[string]any{"epoch": float64(3)})
	manifest, err := BuildManifest(context.Background(), spec, meta)
	require.NoError(t, err)

	entries := manifest.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, EntryMetadata, entries[0].Kind)

	metaDigest, err := meta.Digest()
	require.NoError(t, err)
	assert.Equal(t, metaDigest, entries[0].Hash)
}

func TestBuildManifest_MetadataChangesDigest(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, filepath.Join(tmp, "data.txt"), "d")

	spec, err := PathSpecFromMap(map[string]string{"data.txt": path})
	require.NoError(t, err)

	plain, err := BuildManifest(context.Background(), spec, nil)
	require.NoError(t, err)
	withMeta, err := BuildManifest(context.Background(), spec, MetadataFromDocument(map[string]any{"k": "v"}))
	require.NoError(t, err)

	assert.NotEqual(t, plain.Digest(), withMeta.Digest())
}

func TestBuildManifest_UnreadableFileAborts(t *testing.T) {
	tmp := t.TempDir()
	good := writeFile(t, filepath.Join(tmp, "good.txt"), "g")

	spec, err := PathSpecFromMap(map[string]string{
		"good.txt": good,
		"bad.txt":  filepath.Join(tmp, "missing.txt"),
	})
	require.NoError(t, err)

	manifest, err := BuildManifest(context.Background(), spec, nil)
	assert.Error(t, err)
	assert.Nil(t, manifest)
}

func TestManifestFromDir(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "a.txt"), "1")
	writeFile(t, filepath.Join(tmp, "sub", "b.txt"), "2")

	manifest, err := ManifestFromDir(context.Background(), tmp)
	require.NoError(t, err)
	assert.Equal(t, tmp, manifest.Dir())
	assert.Len(t, manifest.Entries(), 2)

	// same content via an explicit mapping digests identically
	spec, err := PathSpecFromMap(map[string]string{
		"a.txt":     filepath.Join(tmp, "a.txt"),
		"sub/b.txt": filepath.Join(tmp, "sub", "b.txt"),
	})
	require.NoError(t, err)
	mapped, err := BuildManifest(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Equal(t, mapped.Digest(), manifest.Digest())
}

func TestManifestFromDir_SingleFile(t *testing.T) {
	tmp := t.TempDir()
	path := writeFile(t, filepath.Join(tmp, "only.txt"), "o")

	manifest, err := ManifestFromDir(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, tmp, manifest.Dir())
	require.Len(t, manifest.Entries(), 1)
	assert.Equal(t, "only.txt", manifest.Entries()[0].Path)
}

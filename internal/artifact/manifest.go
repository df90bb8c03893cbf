package artifact

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/artifexhq/artifex/internal/utils"
)

const defaultHashConcurrency = 8

// EntryKind tags the two entry variants.
type EntryKind int

const (
	// EntryFile is a regular file read from LocalPath.
	EntryFile EntryKind = iota
	// EntryMetadata is the embedded metadata document. Its bytes are produced
	// on demand from the canonical serialization, never read from disk.
	EntryMetadata
)

// Entry is one (logical path, content hash, source) record in a manifest.
// Entries are never mutated after the manifest is built.
type Entry struct {
	Kind      EntryKind
	Path      string // logical, slash-separated
	Hash      string
	LocalPath string // absolute; empty for EntryMetadata
	meta      *Metadata
}

// Content returns the generated bytes of a metadata entry.
func (e *Entry) Content() ([]byte, error) {
	if e.Kind != EntryMetadata {
		return nil, fmt.Errorf("entry %q has no generated content", e.Path)
	}
	return e.meta.Serialize()
}

// Manifest is the immutable, ordered description of all entries comprising
// one artifact version. The digest is a pure function of the sorted set of
// (logical path, content hash) pairs.
type Manifest struct {
	entries  []Entry
	digest   string
	metadata *Metadata
	dir      string // set only for manifests derived from a directory
}

func (m *Manifest) Entries() []Entry    { return m.entries }
func (m *Manifest) Digest() string      { return m.digest }
func (m *Manifest) Metadata() *Metadata { return m.metadata }

// Dir returns the local directory this manifest was derived from, or "" for
// manifests built from arbitrary path specs.
func (m *Manifest) Dir() string { return m.dir }

type buildConfig struct {
	hasher      *Hasher
	concurrency int
}

type BuildOption func(*buildConfig)

// WithHasher reuses a shared hasher (and its memo) across builds.
func WithHasher(h *Hasher) BuildOption {
	return func(c *buildConfig) { c.hasher = h }
}

// WithHashConcurrency bounds the hashing worker pool.
func WithHashConcurrency(n int) BuildOption {
	return func(c *buildConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// BuildManifest hashes every file in the spec and assembles the manifest.
// Supplying meta while the spec also carries the reserved metadata file is
// ambiguous and rejected; a reserved file alone is popped from the spec and
// loaded as the metadata document instead of being hashed as a plain file.
// Any unreadable file aborts the whole build.
func BuildManifest(ctx context.Context, spec PathSpec, meta *Metadata, opts ...BuildOption) (*Manifest, error) {
	if len(spec) == 0 {
		return nil, ErrEmptySpec
	}

	cfg := &buildConfig{concurrency: defaultHashConcurrency}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.hasher == nil {
		cfg.hasher = NewHasher()
	}

	spec = spec.clone()
	if metaPath, ok := spec[MetadataFilename]; ok {
		if meta != nil {
			return nil, ErrAmbiguousMetadata
		}
		loaded, err := MetadataFromFile(metaPath)
		if err != nil {
			return nil, err
		}
		meta = loaded
		delete(spec, MetadataFilename)
	}

	logicals := spec.SortedLogicalPaths()
	fileEntries := make([]Entry, len(logicals))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.concurrency)
	for i, logical := range logicals {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			localPath, err := filepath.Abs(spec[logical])
			if err != nil {
				return fmt.Errorf("abs %q: %w", spec[logical], err)
			}
			hash, err := cfg.hasher.HashFile(localPath)
			if err != nil {
				return err
			}
			fileEntries[i] = Entry{
				Kind:      EntryFile,
				Path:      logical,
				Hash:      hash,
				LocalPath: localPath,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(fileEntries)+1)
	if meta != nil {
		metaDigest, err := meta.Digest()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Kind: EntryMetadata,
			Path: MetadataFilename,
			Hash: metaDigest,
			meta: meta,
		})
	}
	entries = append(entries, fileEntries...)

	return &Manifest{
		entries:  entries,
		digest:   foldDigest(entries),
		metadata: meta,
	}, nil
}

// ManifestFromDir re-derives a manifest from an already materialized
// directory (or single file), e.g. to check a local copy against a remote
// digest without re-creating anything.
func ManifestFromDir(ctx context.Context, path string, opts ...BuildOption) (*Manifest, error) {
	spec, err := PathSpecFromPath(path)
	if err != nil {
		return nil, err
	}

	manifest, err := BuildManifest(ctx, spec, nil, opts...)
	if err != nil {
		return nil, err
	}

	dir := path
	if !utils.DirExists(path) {
		dir = filepath.Dir(path)
	}
	manifest.dir = dir
	return manifest, nil
}

// foldDigest hashes `logical\x00hash\x00` for every entry in logical-path
// order. The null separators keep the fold injective for any filename bytes,
// and the sort makes it independent of discovery or hashing order.
func foldDigest(entries []Entry) string {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	hash := md5.New()
	for _, e := range sorted {
		io.WriteString(hash, e.Path)
		hash.Write([]byte{0})
		io.WriteString(hash, e.Hash)
		hash.Write([]byte{0})
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

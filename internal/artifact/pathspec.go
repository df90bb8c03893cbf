package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PathSpec maps logical artifact paths (relative, slash-separated) to local
// filesystem paths. Logical paths are unique within one spec.
type PathSpec map[string]string

// PathSpecFromFiles builds a spec from a flat list of file paths. Each entry
// contributes its basename as the logical path, so two paths sharing a
// basename are ambiguous and rejected with ErrDuplicateName.
func PathSpecFromFiles(paths []string) (PathSpec, error) {
	spec := make(PathSpec, len(paths))
	for _, path := range paths {
		base := filepath.Base(path)
		if _, exists := spec[base]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, base)
		}
		spec[base] = path
	}
	if len(spec) == 0 {
		return nil, ErrEmptySpec
	}
	return spec, nil
}

// PathSpecFromMap passes a caller-disambiguated mapping through unchanged.
func PathSpecFromMap(paths map[string]string) (PathSpec, error) {
	if len(paths) == 0 {
		return nil, ErrEmptySpec
	}
	spec := make(PathSpec, len(paths))
	for logical, local := range paths {
		spec[logical] = local
	}
	return spec, nil
}

// PathSpecFromPath builds a spec from a single file or directory. A file maps
// its basename; a directory is walked recursively, following symlinks, and
// every regular file maps its slash-normalized path relative to the root.
func PathSpecFromPath(path string) (PathSpec, error) {
	info, err := os.Stat(path) // Stat follows symlinks
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidInput, path, err)
	}

	spec := make(PathSpec)
	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %q is not a regular file", ErrInvalidInput, path)
		}
		spec[filepath.Base(path)] = path
		return spec, nil
	}

	if err := walkFollowingSymlinks(path, path, spec, 0); err != nil {
		return nil, err
	}
	if len(spec) == 0 {
		return nil, ErrEmptySpec
	}
	return spec, nil
}

// filepath.WalkDir does not traverse into symlinked directories, so the walk
// is hand-rolled with os.Stat to resolve links on both files and dirs.
func walkFollowingSymlinks(root, dir string, spec PathSpec, depth int) error {
	const maxDepth = 255 // cycle guard for symlinked dirs
	if depth > maxDepth {
		return fmt.Errorf("%w: symlink loop under %q", ErrInvalidInput, root)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	for _, dirent := range dirents {
		localPath := filepath.Join(dir, dirent.Name())
		info, err := os.Stat(localPath)
		if err != nil {
			return fmt.Errorf("stat %q: %w", localPath, err)
		}
		switch {
		case info.IsDir():
			if err := walkFollowingSymlinks(root, localPath, spec, depth+1); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			relPath, err := filepath.Rel(root, localPath)
			if err != nil {
				return fmt.Errorf("rel %q: %w", localPath, err)
			}
			spec[filepath.ToSlash(relPath)] = localPath
		}
	}
	return nil
}

// SortedLogicalPaths returns the spec's logical paths in lexical order.
func (s PathSpec) SortedLogicalPaths() []string {
	paths := make([]string, 0, len(s))
	for logical := range s {
		paths = append(paths, logical)
	}
	sort.Strings(paths)
	return paths
}

func (s PathSpec) clone() PathSpec {
	dup := make(PathSpec, len(s))
	for logical, local := range s {
		dup[logical] = local
	}
	return dup
}

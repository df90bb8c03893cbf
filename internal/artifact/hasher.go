package artifact

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const hashCacheSize = 4096

// Hasher computes hex MD5 content hashes of files, streaming so large files
// never sit fully in memory. Results are memoized on (size, mtime) so
// rebuilding a manifest over an unchanged tree skips the re-read.
type Hasher struct {
	cache *lru.Cache[string, hashCacheEntry]
}

type hashCacheEntry struct {
	hash    string
	size    int64
	modTime time.Time
}

func NewHasher() *Hasher {
	cache, _ := lru.New[string, hashCacheEntry](hashCacheSize)
	return &Hasher{cache: cache}
}

// HashFile returns the content hash of the file at path. Only byte content
// contributes to the hash, never file metadata.
func (h *Hasher) HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", path, err)
	}

	if cached, ok := h.cache.Get(path); ok {
		if cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
			return cached.hash, nil
		}
	}

	hash, err := hashFile(path)
	if err != nil {
		return "", err
	}

	h.cache.Add(path, hashCacheEntry{
		hash:    hash,
		size:    info.Size(),
		modTime: info.ModTime(),
	})
	return hash, nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("read %q: %w", path, err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// HashBytes returns the content hash of an in-memory payload, in the same
// format HashFile would produce for a file with those bytes.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

package artifact

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ManifestVersion tags the text format.
const ManifestVersion = 1

// Dump writes the durable text form of the manifest: a version tag, the
// digest, the compact metadata JSON (empty when absent), then one line per
// file entry. Both path fields are strconv.Quote'd so filenames containing
// spaces, newlines, or control bytes round-trip unambiguously while the file
// stays human-diffable. The metadata entry is carried by the metadata line,
// not repeated as a file line.
func (m *Manifest) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "version: %d\n", ManifestVersion); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "digest: %s\n", m.digest); err != nil {
		return err
	}

	metaJSON := ""
	if m.metadata != nil {
		var err error
		if metaJSON, err = m.metadata.JSON(); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "metadata: %s\n", metaJSON); err != nil {
		return err
	}

	for _, e := range m.entries {
		if e.Kind == EntryMetadata {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\n", strconv.Quote(e.Path), strconv.Quote(e.LocalPath), e.Hash); err != nil {
			return err
		}
	}
	return nil
}

// LoadManifest parses the text form written by Dump and recomputes the
// digest fold over the parsed entries, rejecting a record whose stored
// digest no longer matches its entries.
func LoadManifest(r io.Reader) (*Manifest, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	versionLine, err := scanLine(scanner)
	if err != nil {
		return nil, err
	}
	versionStr, ok := strings.CutPrefix(versionLine, "version: ")
	if !ok {
		return nil, fmt.Errorf("%w: missing version line", ErrBadManifest)
	}
	if v, err := strconv.Atoi(versionStr); err != nil || v != ManifestVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrBadManifest, versionStr)
	}

	digestLine, err := scanLine(scanner)
	if err != nil {
		return nil, err
	}
	digest, ok := strings.CutPrefix(digestLine, "digest: ")
	if !ok || digest == "" {
		return nil, fmt.Errorf("%w: missing digest line", ErrBadManifest)
	}

	metaLine, err := scanLine(scanner)
	if err != nil {
		return nil, err
	}
	metaJSON, ok := strings.CutPrefix(metaLine, "metadata:")
	if !ok {
		return nil, fmt.Errorf("%w: missing metadata line", ErrBadManifest)
	}
	metaJSON = strings.TrimPrefix(metaJSON, " ")

	var meta *Metadata
	if metaJSON != "" {
		var doc map[string]any
		if err := json.Unmarshal([]byte(metaJSON), &doc); err != nil {
			return nil, fmt.Errorf("%w: bad metadata json: %v", ErrBadManifest, err)
		}
		meta = MetadataFromDocument(doc)
	}

	var entries []Entry
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

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := parseEntryLine(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrBadManifest)
	}

	if computed := foldDigest(entries); computed != digest {
		return nil, fmt.Errorf("%w: digest mismatch, stored %s computed %s", ErrBadManifest, digest, computed)
	}

	return &Manifest{
		entries:  entries,
		digest:   digest,
		metadata: meta,
	}, nil
}

func scanLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: truncated", ErrBadManifest)
	}
	return scanner.Text(), nil
}

func parseEntryLine(line string) (Entry, error) {
	logical, rest, err := cutQuoted(line)
	if err != nil {
		return Entry{}, err
	}
	localPath, hash, err := cutQuoted(rest)
	if err != nil {
		return Entry{}, err
	}
	if hash == "" || strings.ContainsRune(hash, ' ') {
		return Entry{}, fmt.Errorf("%w: bad entry line %q", ErrBadManifest, line)
	}
	return Entry{
		Kind:      EntryFile,
		Path:      logical,
		Hash:      hash,
		LocalPath: localPath,
	}, nil
}

// cutQuoted splits one leading quoted field off a line, returning the
// unquoted field and the remainder after the separating space.
func cutQuoted(s string) (field, rest string, err error) {
	quoted, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad entry field in %q", ErrBadManifest, s)
	}
	field, err = strconv.Unquote(quoted)
	if err != nil {
		return "", "", fmt.Errorf("%w: bad entry field in %q", ErrBadManifest, s)
	}
	rest = strings.TrimPrefix(s[len(quoted):], " ")
	return field, rest, nil
}

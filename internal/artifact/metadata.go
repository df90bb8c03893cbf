package artifact

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// MetadataFilename is the reserved logical path under which embedded metadata
// travels inside an artifact. A file with this name in a path spec is folded
// into the manifest as structured metadata rather than hashed as a plain file.
const MetadataFilename = "artifact-metadata.json"

// Metadata is an optional JSON document embedded in an artifact.
type Metadata struct {
	doc map[string]any
}

func MetadataFromDocument(doc map[string]any) *Metadata {
	return &Metadata{doc: doc}
}

func MetadataFromFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata %q: %w", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse metadata %q: %w", path, err)
	}
	return &Metadata{doc: doc}, nil
}

// Value returns the parsed document.
func (m *Metadata) Value() map[string]any {
	return m.doc
}

// Serialize produces the canonical encoding: keys sorted, 4-space indented,
// trailing newline. Non-finite floats are rejected so the bytes are stable
// across any JSON reader/writer pair.
func (m *Metadata) Serialize() ([]byte, error) {
	data, err := json.MarshalIndent(m.doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return append(data, '\n'), nil
}

// JSON returns the compact single-line encoding used in the manifest text
// format and the version-create call.
func (m *Metadata) JSON() (string, error) {
	data, err := json.Marshal(m.doc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return string(data), nil
}

// Digest hashes the canonical serialization. Two documents with equal content
// digest identically regardless of key order in their source encoding.
func (m *Metadata) Digest() (string, error) {
	data, err := m.Serialize()
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

package artifact

import (
	"errors"
	"fmt"
)

var (
	// path spec
	ErrInvalidInput  = errors.New("artifact: paths must be a list, mapping, or valid file or directory path")
	ErrEmptySpec     = fmt.Errorf("%w: at least one valid path must be specified", ErrInvalidInput)
	ErrDuplicateName = errors.New("artifact: duplicate file name in artifact file list, pass a mapping instead")

	// metadata
	ErrAmbiguousMetadata = errors.New("artifact: metadata argument conflicts with " + MetadataFilename + " in paths")
	ErrSerialize         = errors.New("artifact: metadata is not serializable")

	// manifest text format
	ErrBadManifest = errors.New("artifact: malformed manifest")
)

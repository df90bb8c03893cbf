package sync

import "context"

// VersionState is the remote lifecycle state of an artifact version. The
// remote is the sole writer; this side only observes.
type VersionState string

const (
	// StatePending means the version record exists but its file contents have
	// not all been transferred yet.
	StatePending VersionState = "PENDING"
	// StateCommitted means the remote has received and committed the manifest.
	StateCommitted VersionState = "COMMITTED"
	// StateReady means server-side post-processing finished and the version is
	// available for consumption.
	StateReady VersionState = "READY"
	// StateFailed means the remote gave up on the version.
	StateFailed VersionState = "FAILED"
)

// ArtifactVersion is a read-only snapshot of the remote version record,
// refreshed by subsequent registry calls.
type ArtifactVersion struct {
	ID         string       `json:"id"`
	ArtifactID string       `json:"artifact_id"`
	Digest     string       `json:"digest"`
	State      VersionState `json:"state"`
}

// Registry is the artifact registry's record-keeping surface.
type Registry interface {
	CreateArtifact(ctx context.Context, name string) (string, error)
	CreateArtifactVersion(ctx context.Context, params *CreateVersionParams) (*ArtifactVersion, error)
	CommitArtifactVersion(ctx context.Context, versionID string) error
	GetArtifactVersion(ctx context.Context, versionID string) (*ArtifactVersion, error)
}

// CreateVersionParams carries everything the registry needs to open a version.
type CreateVersionParams struct {
	ArtifactID    string   `json:"artifact_id"`
	Digest        string   `json:"digest"`
	Metadata      string   `json:"metadata,omitempty"` // compact JSON, "" when absent
	Description   string   `json:"description,omitempty"`
	Aliases       []string `json:"aliases,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	IsUserCreated bool     `json:"is_user_created"`
}

// Transport streams entry contents to storage for a pending version.
type Transport interface {
	// FileChanged uploads the file at localPath under logicalPath, tagged
	// with the version id.
	FileChanged(ctx context.Context, versionID, logicalPath, localPath string) error
	// CommitArtifact marks all files for the version as submitted.
	CommitArtifact(ctx context.Context, versionID string) error
}

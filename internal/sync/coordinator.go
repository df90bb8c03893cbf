package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/artifexhq/artifex/internal/artifact"
)

const (
	defaultUploadConcurrency = 4
	defaultPollInterval      = 2 * time.Second
)

// SaveOptions carries the optional attributes of a version-create call.
type SaveOptions struct {
	Description   string
	Aliases       []string
	Labels        []string
	IsUserCreated bool
}

// Coordinator drives the remote lifecycle of one artifact version: register
// the artifact, register the version under the manifest digest, stream entry
// contents, commit, and poll for readiness. The registry and transport are
// always injected; there is no implicit default.
type Coordinator struct {
	registry     Registry
	transport    Transport
	concurrency  int
	pollInterval time.Duration

	mu    sync.Mutex
	saved *ArtifactVersion
}

type Option func(*Coordinator)

// WithUploadConcurrency bounds the parallel file transfers during save.
func WithUploadConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithPollInterval sets the sleep between readiness polls in Wait.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func NewCoordinator(registry Registry, transport Transport, opts ...Option) (*Coordinator, error) {
	if registry == nil {
		return nil, ErrNoRegistry
	}
	if transport == nil {
		return nil, ErrNoTransport
	}

	c := &Coordinator{
		registry:     registry,
		transport:    transport,
		concurrency:  defaultUploadConcurrency,
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Save registers the manifest under name and brings the remote version to
// COMMITTED. A version that already exists server-side as COMMITTED is
// returned without transferring anything; duplicate uploads of the same
// (name, digest) pair from concurrent processes are the remote's problem to
// deduplicate, not ours.
func (c *Coordinator) Save(ctx context.Context, m *artifact.Manifest, name string, opts *SaveOptions) (*ArtifactVersion, error) {
	if opts == nil {
		opts = &SaveOptions{}
	}

	metadataJSON := ""
	if meta := m.Metadata(); meta != nil {
		var err error
		if metadataJSON, err = meta.JSON(); err != nil {
			return nil, err
		}
	}

	artifactID, err := c.registry.CreateArtifact(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create artifact %q: %w", name, err)
	}

	version, err := c.registry.CreateArtifactVersion(ctx, &CreateVersionParams{
		ArtifactID:    artifactID,
		Digest:        m.Digest(),
		Metadata:      metadataJSON,
		Description:   opts.Description,
		Aliases:       opts.Aliases,
		Labels:        opts.Labels,
		IsUserCreated: opts.IsUserCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("create artifact version: %w", err)
	}

	switch version.State {
	case StateCommitted:
		// already on the server, nothing to transfer
		slog.Debug("artifact version already committed", "version", version.ID, "digest", version.Digest)
		c.setSaved(version)
		return version, nil
	case StatePending:
	default:
		return nil, &UnexpectedStateError{VersionID: version.ID, State: version.State}
	}

	if err := c.uploadEntries(ctx, m, version.ID); err != nil {
		return nil, err
	}

	if err := c.transport.CommitArtifact(ctx, version.ID); err != nil {
		return nil, fmt.Errorf("commit files for version %s: %w", version.ID, err)
	}

	c.setSaved(version)
	return version, nil
}

// uploadEntries streams every entry's content with a bounded worker pool and
// returns only after all transfers are acknowledged.
func (c *Coordinator) uploadEntries(ctx context.Context, m *artifact.Manifest, versionID string) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)

	for _, entry := range m.Entries() {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			if entry.Kind == artifact.EntryMetadata {
				return c.uploadMetadata(egCtx, &entry, versionID)
			}
			return c.uploadFile(egCtx, &entry, versionID)
		})
	}
	return eg.Wait()
}

func (c *Coordinator) uploadFile(ctx context.Context, entry *artifact.Entry, versionID string) error {
	if info, err := os.Stat(entry.LocalPath); err == nil {
		slog.Debug("upload", "path", entry.Path, "size", humanize.Bytes(uint64(info.Size())))
	}
	if err := c.transport.FileChanged(ctx, versionID, entry.Path, entry.LocalPath); err != nil {
		return fmt.Errorf("upload %q: %w", entry.Path, err)
	}
	return nil
}

// uploadMetadata materializes the generated metadata bytes to a scratch file
// so the transport only ever deals in paths.
func (c *Coordinator) uploadMetadata(ctx context.Context, entry *artifact.Entry, versionID string) error {
	data, err := entry.Content()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", artifact.MetadataFilename+".*")
	if err != nil {
		return fmt.Errorf("create metadata temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata temp file: %w", err)
	}

	if err := c.transport.FileChanged(ctx, versionID, entry.Path, tmpPath); err != nil {
		return fmt.Errorf("upload %q: %w", entry.Path, err)
	}
	return nil
}

// Commit asks the registry to finalize the saved version.
func (c *Coordinator) Commit(ctx context.Context) error {
	saved := c.Saved()
	if saved == nil {
		return ErrNotSaved
	}
	return c.registry.CommitArtifactVersion(ctx, saved.ID)
}

// Wait polls the registry until the saved version reaches READY. It returns
// early when ctx is cancelled, and fails for a version the remote marked
// FAILED rather than spinning forever.
func (c *Coordinator) Wait(ctx context.Context) (*ArtifactVersion, error) {
	saved := c.Saved()
	if saved == nil {
		return nil, ErrNotSaved
	}
	if saved.State == StateReady {
		return saved, nil
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			version, err := c.registry.GetArtifactVersion(ctx, saved.ID)
			if err != nil {
				return nil, fmt.Errorf("poll version %s: %w", saved.ID, err)
			}
			c.setSaved(version)
			switch version.State {
			case StateReady:
				return version, nil
			case StateFailed:
				return nil, &UnexpectedStateError{VersionID: version.ID, State: version.State}
			}
		}
	}
}

// WaitTimeout is Wait bounded by a deadline.
func (c *Coordinator) WaitTimeout(ctx context.Context, timeout time.Duration) (*ArtifactVersion, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Wait(ctx)
}

// Saved returns the snapshot of the last successfully saved version, or nil.
func (c *Coordinator) Saved() *ArtifactVersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

func (c *Coordinator) setSaved(v *ArtifactVersion) {
	c.mu.Lock()
	c.saved = v
	c.mu.Unlock()
}

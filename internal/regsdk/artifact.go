package regsdk

import (
	"context"

	"github.com/imroc/req/v3"

	"github.com/artifexhq/artifex/internal/sync"
)

const (
	v1Artifacts        = "/api/v1/artifacts"
	v1ArtifactVersions = "/api/v1/artifacts/{artifactId}/versions"
	v1Version          = "/api/v1/versions/{versionId}"
	v1VersionCommit    = "/api/v1/versions/{versionId}/commit"
)

// ArtifactAPI is the registry's record-keeping surface.
type ArtifactAPI struct {
	client *req.Client
}

var _ sync.Registry = (*ArtifactAPI)(nil)

func newArtifactAPI(client *req.Client) *ArtifactAPI {
	return &ArtifactAPI{
		client: client,
	}
}

// CreateArtifact registers the named artifact and returns its id. Creating a
// name that already exists returns the existing id.
func (a *ArtifactAPI) CreateArtifact(ctx context.Context, name string) (string, error) {
	var apiResp CreateArtifactResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(&CreateArtifactRequest{Name: name}).
		SetSuccessResult(&apiResp).
		Post(v1Artifacts)

	if err := handleAPIError(resp, err, "artifact create"); err != nil {
		return "", err
	}

	return apiResp.ID, nil
}

// CreateArtifactVersion opens a version under the manifest digest and returns
// the server's snapshot of it.
func (a *ArtifactAPI) CreateArtifactVersion(ctx context.Context, params *sync.CreateVersionParams) (*sync.ArtifactVersion, error) {
	var apiResp sync.ArtifactVersion
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("artifactId", params.ArtifactID).
		SetBody(params).
		SetSuccessResult(&apiResp).
		Post(v1ArtifactVersions)

	if err := handleAPIError(resp, err, "artifact version create"); err != nil {
		return nil, err
	}

	return &apiResp, nil
}

// CommitArtifactVersion finalizes the version.
func (a *ArtifactAPI) CommitArtifactVersion(ctx context.Context, versionID string) error {
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("versionId", versionID).
		Post(v1VersionCommit)

	return handleAPIError(resp, err, "artifact version commit")
}

// GetArtifactVersion refreshes the version snapshot.
func (a *ArtifactAPI) GetArtifactVersion(ctx context.Context, versionID string) (*sync.ArtifactVersion, error) {
	var apiResp sync.ArtifactVersion
	resp, err := a.client.R().
		SetContext(ctx).
		SetPathParam("versionId", versionID).
		SetSuccessResult(&apiResp).
		Get(v1Version)

	if err := handleAPIError(resp, err, "artifact version get"); err != nil {
		return nil, err
	}

	return &apiResp, nil
}

package regsdk

import (
	"context"

	"github.com/imroc/req/v3"

	"github.com/artifexhq/artifex/internal/sync"
	"github.com/artifexhq/artifex/internal/utils"
)

const (
	v1VersionFiles       = "/api/v1/versions/{versionId}/files"
	v1VersionFilesCommit = "/api/v1/versions/{versionId}/files/commit"
)

// FileAPI streams file contents to the registry's storage.
type FileAPI struct {
	client *req.Client
}

var _ sync.Transport = (*FileAPI)(nil)

func newFileAPI(client *req.Client) *FileAPI {
	return &FileAPI{
		client: client,
	}
}

// FileChanged uploads the file at localPath under logicalPath for a pending
// version.
func (f *FileAPI) FileChanged(ctx context.Context, versionID, logicalPath, localPath string) error {
	if !utils.FileExists(localPath) {
		return ErrFileNotFound
	}

	var apiResp FileChangedResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("versionId", versionID).
		SetQueryParam("path", logicalPath).
		SetRetryCount(0).
		SetFile("file", localPath).
		SetSuccessResult(&apiResp).
		Put(v1VersionFiles)

	return handleAPIError(resp, err, "file upload")
}

// CommitArtifact marks every file of the version as submitted.
func (f *FileAPI) CommitArtifact(ctx context.Context, versionID string) error {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("versionId", versionID).
		Post(v1VersionFilesCommit)

	return handleAPIError(resp, err, "files commit")
}

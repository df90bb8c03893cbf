package regsdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	// sdk common
	ErrNoServerURL  = errors.New("sdk: server url missing")
	ErrFileNotFound = errors.New("sdk: file not found")
)

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeUnknownError   = "E_UNKNOWN_ERR"     // unknown error

	// Artifact errors
	CodeArtifactNotFound     = "E_ARTIFACT_NOT_FOUND"     // the specified artifact could not be found.
	CodeVersionNotFound      = "E_VERSION_NOT_FOUND"      // the specified artifact version could not be found.
	CodeVersionCommitFailed  = "E_VERSION_COMMIT_FAILED"  // a failure while committing an artifact version.
	CodeVersionDigestInvalid = "E_VERSION_DIGEST_INVALID" // the supplied manifest digest is malformed.
	CodeFilePutFailed        = "E_FILE_PUT_FAILED"        // a failure during the operation to upload a file.
	CodeFilesCommitFailed    = "E_FILES_COMMIT_FAILED"    // a failure while marking a version's files submitted.
)

// APIError represents registry API errors
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	// got a response, but api returned an error
	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("%s %w", operation, err)
		}

		return fmt.Errorf("api error: %s %s", operation, resp.Dump())
	}

	return nil
}

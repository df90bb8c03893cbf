package regsdk

import (
	"fmt"
	"runtime"
	"time"

	"github.com/imroc/req/v3"

	"github.com/artifexhq/artifex/internal/version"
)

const (
	HeaderUserAgent      = "User-Agent"
	HeaderArtifexVersion = "X-Artifex-Version"
)

var ArtifexUserAgent = fmt.Sprintf("Artifex/%s (%s; %s; %s)", version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// Client is the HTTP client for the artifact registry API.
type Client struct {
	client    *req.Client
	baseURL   string
	Artifacts *ArtifactAPI
	Files     *FileAPI
}

// New creates a registry client for the given base URL.
func New(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoServerURL
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent(ArtifexUserAgent).
		SetCommonHeader(HeaderArtifexVersion, version.Version).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &Client{
		client:    client,
		baseURL:   baseURL,
		Artifacts: newArtifactAPI(client),
		Files:     newFileAPI(client),
	}, nil
}

// Close terminates idle connections.
func (c *Client) Close() {
	c.client.GetClient().CloseIdleConnections()
}

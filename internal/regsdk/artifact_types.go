package regsdk

type CreateArtifactRequest struct {
	Name string `json:"name"`
}

type CreateArtifactResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FileChangedResponse struct {
	Key  string `json:"key"`
	ETag string `json:"etag"`
	Size int64  `json:"size"`
}

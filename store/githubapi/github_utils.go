package githubapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/okulov/cipherpost/store"
)

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type putContentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

func (ghStore *GitHubBlobStore) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", ghStore.baseURL, ghStore.owner, ghStore.repo, path)
}

func (ghStore *GitHubBlobStore) doRequest(ctx context.Context, method string, url string, body []byte) (*http.Response, error) {
	if err := ghStore.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	return ghStore.httpClient.Do(req)
}

func getContents(ghStore *GitHubBlobStore, ctx context.Context, path string) (contentsResponse, error) {
	resp, err := ghStore.doRequest(ctx, http.MethodGet, ghStore.contentsURL(path), nil)
	if err != nil {
		return contentsResponse{}, fmt.Errorf("contents request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return contentsResponse{}, store.ErrBlobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return contentsResponse{}, remoteError(resp)
	}

	var contents contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&contents); err != nil {
		return contentsResponse{}, fmt.Errorf("failed to decode contents response: %w", err)
	}
	return contents, nil
}

func putContents(ghStore *GitHubBlobStore, ctx context.Context, path string, content []byte, commitMessage string, revision string) error {
	body, err := json.Marshal(putContentsRequest{
		Message: commitMessage,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     revision,
	})
	if err != nil {
		return err
	}

	resp, err := ghStore.doRequest(ctx, http.MethodPut, ghStore.contentsURL(path), body)
	if err != nil {
		return fmt.Errorf("contents update failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict:
		return store.ErrRevisionMismatch
	case http.StatusUnprocessableEntity:
		// GitHub reports a stale or missing sha for an existing file as 422.
		return store.ErrRevisionMismatch
	default:
		return remoteError(resp)
	}
}

// decodeContent handles the API's base64 payloads, which arrive chunked with
// embedded newlines.
func decodeContent(encoded string) ([]byte, error) {
	cleaned := strings.ReplaceAll(encoded, "\n", "")
	return base64.StdEncoding.DecodeString(cleaned)
}

func remoteError(resp *http.Response) error {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("github api returned status %d", resp.StatusCode)
	}
	return fmt.Errorf("github api returned status %d: %s", resp.StatusCode, apiErr.Message)
}

// Package githubapi implements store.BlobStore on top of the GitHub
// repository contents REST API. Each blob is a file in the repository; the
// file's git sha doubles as the revision token for conditional updates.
package githubapi

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/okulov/cipherpost/store"
)

const defaultBaseURL = "https://api.github.com"

// GitHub's secondary rate limits punish unthrottled content writes, so every
// request goes through a client-side limiter first.
const (
	requestsPerSecond = 5
	requestBurst      = 10
)

type GitHubBlobStore struct {
	httpClient *http.Client
	baseURL    string
	owner      string
	repo       string
	token      string
	limiter    *rate.Limiter
}

// NewGitHubBlobStore builds a store for the given repository. An empty token
// is allowed at construction; every data operation then fails with
// store.ErrMissingToken until the process is restarted with one. An empty
// apiBaseURL selects the public GitHub API endpoint.
func NewGitHubBlobStore(ctx context.Context, owner string, repo string, token string, apiBaseURL string) *GitHubBlobStore {
	if apiBaseURL == "" {
		apiBaseURL = defaultBaseURL
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &GitHubBlobStore{
		httpClient: oauth2.NewClient(ctx, src),
		baseURL:    apiBaseURL,
		owner:      owner,
		repo:       repo,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

func (ghStore *GitHubBlobStore) Fetch(ctx context.Context, path string) ([]byte, string, error) {
	if ghStore.token == "" {
		return nil, "", store.ErrMissingToken
	}

	resp, err := getContents(ghStore, ctx, path)
	if err != nil {
		return nil, "", err
	}

	content, err := decodeContent(resp.Content)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode blob %s: %w", path, err)
	}

	return content, resp.SHA, nil
}

func (ghStore *GitHubBlobStore) Put(ctx context.Context, path string, content []byte, commitMessage string, revision string) error {
	if ghStore.token == "" {
		return store.ErrMissingToken
	}

	return putContents(ghStore, ctx, path, content, commitMessage, revision)
}

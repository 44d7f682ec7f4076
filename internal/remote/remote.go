// Package remote fetches files from the repositories listed in the registry.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/github"

	"github.com/StinkyLord/psl-catalog-builder/internal/model"
)

// ErrNotAFile is returned when the requested path names a directory or a
// file whose content the API did not inline.
var ErrNotAFile = errors.New("not a file")

// Fetcher returns the raw contents of path in the project's repository at
// the project's branch.
type Fetcher interface {
	Fetch(ctx context.Context, p model.Project, path string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, p model.Project, path string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, p model.Project, path string) ([]byte, error) {
	return f(ctx, p, path)
}

// GitHub reads files through the GitHub contents API with an anonymous client.
type GitHub struct {
	client *github.Client
}

// NewGitHub creates a fetcher. apiURL overrides the public API endpoint
// (GitHub Enterprise, test servers); httpClient may be nil.
func NewGitHub(apiURL string, httpClient *http.Client) (*GitHub, error) {
	client := github.NewClient(httpClient)
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid API URL %q: %w", apiURL, err)
		}
		client.BaseURL = u
	}
	return &GitHub{client: client}, nil
}

func (g *GitHub) Fetch(ctx context.Context, p model.Project, path string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: p.Branch}
	file, _, _, err := g.client.Repositories.GetContents(ctx, p.Org, p.Repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching %s from %s: %w", path, p, err)
	}
	if file == nil || file.Content == nil {
		return nil, fmt.Errorf("fetching %s from %s: %w", path, p, ErrNotAFile)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decoding %s from %s: %w", path, p, err)
	}
	return []byte(content), nil
}

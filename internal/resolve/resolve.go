// Package resolve turns descriptor attributes into catalog values.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/StinkyLord/psl-catalog-builder/internal/ctxlog"
	"github.com/StinkyLord/psl-catalog-builder/internal/model"
	"github.com/StinkyLord/psl-catalog-builder/internal/remote"
)

// ErrMarkerNotFound is returned when a start or end marker is configured
// but does not occur in the fetched file.
var ErrMarkerNotFound = errors.New("marker not found")

// Resolver resolves attributes, fetching remote files through a Fetcher.
type Resolver struct {
	fetcher remote.Fetcher
}

func New(fetcher remote.Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve produces the catalog value for one attribute of project p.
// Attributes of an unknown type are logged and resolve to a null value and
// source; every other failure is returned.
func (r *Resolver) Resolve(ctx context.Context, p model.Project, attr model.Attribute) (model.Resolved, error) {
	switch src := attr.Source.(type) {
	case model.RemoteFileRegion:
		data, err := r.fetcher.Fetch(ctx, p, src.Path)
		if err != nil {
			return model.Resolved{}, err
		}
		value, err := ExtractSection(string(data), src.StartMarker, src.EndMarker)
		if err != nil {
			return model.Resolved{}, fmt.Errorf("%s in %s: %w", src.Path, p, err)
		}
		return model.Resolved{
			Value:  &value,
			Source: model.StringPtr(FileURL(p, src.Path)),
		}, nil

	case model.InlineHTML:
		return model.Resolved{Value: src.Data, Source: src.SourceLabel}, nil

	default:
		ctxlog.FromContext(ctx).Warn("MISSING DATA",
			"project", p.Repo,
			"entry", attr.Name,
			"descriptor", string(attr.Raw))
		return model.Resolved{}, nil
	}
}

// ExtractSection returns the text strictly between the first occurrence of
// start and the first occurrence of end after it. A nil or empty start reads
// from the beginning of text, a nil or empty end reads to its end.
func ExtractSection(text string, start, end *string) (string, error) {
	if start != nil && *start != "" {
		i := strings.Index(text, *start)
		if i < 0 {
			return "", fmt.Errorf("start %q: %w", *start, ErrMarkerNotFound)
		}
		text = text[i+len(*start):]
	}
	if end != nil && *end != "" {
		j := strings.Index(text, *end)
		if j < 0 {
			return "", fmt.Errorf("end %q: %w", *end, ErrMarkerNotFound)
		}
		text = text[:j]
	}
	return text, nil
}

// FileURL is the web location of path in the project's repository.
func FileURL(p model.Project, path string) string {
	return fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s", p.Org, p.Repo, p.Branch, path)
}

// Package registry loads the list of projects that make up the catalog.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/StinkyLord/psl-catalog-builder/internal/model"
)

// DefaultPath is the registry file read when no path is configured.
const DefaultPath = "register.json"

// ErrProjectNotFound is returned when a single-project build names a
// project that is not in the registry.
var ErrProjectNotFound = errors.New("project not found")

// Load reads the registry at path. The file is a list of {org, repo, branch}
// objects; .yaml and .yml files are parsed as YAML, anything else as JSON.
func Load(path string) ([]model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var projects []model.Project
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &projects)
	default:
		err = json.Unmarshal(data, &projects)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing registry %s: %w", path, err)
	}
	return projects, nil
}

// Select narrows projects to the one named buildOne. An empty name returns
// projects unchanged.
func Select(projects []model.Project, buildOne string) ([]model.Project, error) {
	if buildOne == "" {
		return projects, nil
	}
	for _, p := range projects {
		if p.Repo == buildOne {
			return []model.Project{p}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not in the registry or the provided projects", ErrProjectNotFound, buildOne)
}

// RepoURL returns the web URL of the project's repository.
func RepoURL(p model.Project) string {
	return fmt.Sprintf("https://github.com/%s/%s", p.Org, p.Repo)
}

// Links builds the repo link table used by the templates.
func Links(projects []model.Project) map[string]string {
	links := make(map[string]string, len(projects))
	for _, p := range projects {
		links[p.Repo] = RepoURL(p)
	}
	return links
}

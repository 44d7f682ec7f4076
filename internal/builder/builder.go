// Package builder assembles the catalog from the registry, either by
// fetching every project's descriptor or by replaying a saved catalog.
package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/StinkyLord/psl-catalog-builder/internal/ctxlog"
	"github.com/StinkyLord/psl-catalog-builder/internal/model"
	"github.com/StinkyLord/psl-catalog-builder/internal/output"
	"github.com/StinkyLord/psl-catalog-builder/internal/registry"
	"github.com/StinkyLord/psl-catalog-builder/internal/remote"
	"github.com/StinkyLord/psl-catalog-builder/internal/resolve"
)

// Config controls a Builder.
type Config struct {
	// Projects, when non-nil, is used instead of reading RegistryPath.
	Projects []model.Project

	// RegistryPath is the registry file (default registry.DefaultPath).
	RegistryPath string

	// OutputDir receives index.html, projects/ and catalog.json, and is
	// where develop mode looks for catalog.json (default ".").
	OutputDir string

	// Develop loads the catalog from OutputDir/catalog.json instead of
	// contacting GitHub.
	Develop bool

	// BuildOne restricts the run to the project with this repo name.
	BuildOne string
}

// Builder collects the catalog for a set of projects.
type Builder struct {
	cfg      Config
	projects []model.Project
	fetcher  remote.Fetcher
	resolver *resolve.Resolver

	catalog *model.Catalog
	repos   map[string]string
}

// New loads the project list and applies the BuildOne filter. It fails with
// registry.ErrProjectNotFound when BuildOne names an unknown project.
func New(cfg Config, fetcher remote.Fetcher) (*Builder, error) {
	if cfg.RegistryPath == "" {
		cfg.RegistryPath = registry.DefaultPath
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}

	projects := cfg.Projects
	if projects == nil {
		loaded, err := registry.Load(cfg.RegistryPath)
		if err != nil {
			return nil, err
		}
		projects = loaded
	}

	projects, err := registry.Select(projects, cfg.BuildOne)
	if err != nil {
		return nil, err
	}

	return &Builder{
		cfg:      cfg,
		projects: projects,
		fetcher:  fetcher,
		resolver: resolve.New(fetcher),
		catalog:  model.NewCatalog(),
		repos:    map[string]string{},
	}, nil
}

// Load fills the catalog and the repo link table.
func (b *Builder) Load(ctx context.Context) error {
	if b.cfg.Develop {
		return b.replay(ctx)
	}
	return b.fetch(ctx)
}

// fetch queries every project's descriptor in case-insensitive name order
// and resolves its attributes. The first error aborts the run.
func (b *Builder) fetch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	projects := make([]model.Project, len(b.projects))
	copy(projects, b.projects)
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].SortKey() < projects[j].SortKey()
	})

	for _, p := range projects {
		logger.Info("Fetching descriptor", "project", p.Repo, "org", p.Org, "branch", p.Branch)

		data, err := b.fetcher.Fetch(ctx, p, model.DescriptorPath)
		if err != nil {
			return err
		}
		desc, err := model.ParseDescriptor(data)
		if err != nil {
			return fmt.Errorf("%s in %s: %w", model.DescriptorPath, p, err)
		}

		b.catalog.Set(p.Repo, "name", model.Resolved{
			Value:  model.StringPtr(p.Repo),
			Source: model.StringPtr(""),
		})
		b.repos[p.Repo] = registry.RepoURL(p)

		for _, attr := range desc.Attributes {
			logger.Debug("Resolving attribute", "project", p.Repo, "entry", attr.Name)
			r, err := b.resolver.Resolve(ctx, p, attr)
			if err != nil {
				return fmt.Errorf("project %s, entry %s: %w", p.Repo, attr.Name, err)
			}
			b.catalog.Set(p.Repo, attr.Name, r)
		}
	}

	logger.Info("Catalog assembled", "projects", b.catalog.Len())
	return nil
}

// replay reads the catalog saved by a previous run. Repo links still come
// from the registry, which is local.
func (b *Builder) replay(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	path := filepath.Join(b.cfg.OutputDir, output.CatalogFile)
	logger.Info("Develop mode. Loading catalog from file", "path", path)

	c, err := output.ReadCatalog(path)
	if err != nil {
		return err
	}
	b.catalog = c
	b.repos = registry.Links(b.projects)

	logger.Info("Catalog loaded", "projects", c.Len())
	return nil
}

func (b *Builder) Catalog() *model.Catalog { return b.catalog }

func (b *Builder) Repos() map[string]string { return b.repos }

// Projects returns the projects selected for this run, in registry order.
func (b *Builder) Projects() []model.Project {
	out := make([]model.Project, len(b.projects))
	copy(out, b.projects)
	return out
}

func (b *Builder) OutputDir() string { return b.cfg.OutputDir }

// WritePages renders index.html and the project pages into the output
// directory.
func (b *Builder) WritePages(r *output.Renderer) error {
	return r.WritePages(b.cfg.OutputDir, b.catalog, b.repos)
}

// DumpCatalog returns the catalog as JSON, writing it to path when set.
func (b *Builder) DumpCatalog(path string) (string, error) {
	return output.DumpCatalog(b.catalog, path)
}

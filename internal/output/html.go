package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/StinkyLord/psl-catalog-builder/internal/model"
)

// Template and page names. A custom templates directory must provide both
// templates.
const (
	IndexTemplate   = "catalog_template.html"
	ProjectTemplate = "project_template.html"
	IndexFile       = "index.html"
	ProjectsDir     = "projects"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexData is passed to the listing template.
type IndexData struct {
	Catalog *model.Catalog
	Repos   map[string]string
}

// ProjectData is passed to the per-project template.
type ProjectData struct {
	Project *model.Entry
	Repo    string
}

var funcs = template.FuncMap{
	// Descriptor values are HTML fragments written by the project maintainers.
	"safe": func(s string) template.HTML { return template.HTML(s) },
}

// Renderer writes the catalog pages.
type Renderer struct {
	index   *template.Template
	project *template.Template
}

// NewRenderer parses the listing and project templates from dir, or the
// embedded defaults when dir is empty.
func NewRenderer(dir string) (*Renderer, error) {
	var fsys fs.FS
	if dir == "" {
		sub, err := fs.Sub(templateFS, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
	}

	index, err := template.New(IndexTemplate).Funcs(funcs).ParseFS(fsys, IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", IndexTemplate, err)
	}
	project, err := template.New(ProjectTemplate).Funcs(funcs).ParseFS(fsys, ProjectTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectTemplate, err)
	}
	return &Renderer{index: index, project: project}, nil
}

func (r *Renderer) RenderIndex(w io.Writer, c *model.Catalog, repos map[string]string) error {
	return r.index.Execute(w, IndexData{Catalog: c, Repos: repos})
}

func (r *Renderer) RenderProject(w io.Writer, e *model.Entry, repo string) error {
	return r.project.Execute(w, ProjectData{Project: e, Repo: repo})
}

// WritePages writes index.html and one projects/<name>.html page per catalog
// entry under dir.
func (r *Renderer) WritePages(dir string, c *model.Catalog, repos map[string]string) error {
	if err := writePage(filepath.Join(dir, IndexFile), func(w io.Writer) error {
		return r.RenderIndex(w, c, repos)
	}); err != nil {
		return err
	}

	projectsDir := filepath.Join(dir, ProjectsDir)
	if err := os.MkdirAll(projectsDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", projectsDir, err)
	}
	for _, e := range c.Entries() {
		path := filepath.Join(projectsDir, filepath.Base(e.Name)+".html")
		if err := writePage(path, func(w io.Writer) error {
			return r.RenderProject(w, e, repos[e.Name])
		}); err != nil {
			return err
		}
	}
	return nil
}

func writePage(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

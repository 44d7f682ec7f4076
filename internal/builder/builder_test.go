package builder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/StinkyLord/psl-catalog-builder/internal/model"
	"github.com/StinkyLord/psl-catalog-builder/internal/output"
	"github.com/StinkyLord/psl-catalog-builder/internal/registry"
	"github.com/StinkyLord/psl-catalog-builder/internal/remote"
)

// stubRepos serves files keyed by "repo/path" and counts requests.
type stubRepos struct {
	files    map[string]string
	requests []string
}

func (s *stubRepos) Fetch(_ context.Context, p model.Project, path string) ([]byte, error) {
	key := p.Repo + "/" + path
	s.requests = append(s.requests, key)
	content, ok := s.files[key]
	if !ok {
		return nil, errors.New("404 Not Found: " + key)
	}
	return []byte(content), nil
}

func projects(names ...string) []model.Project {
	var out []model.Project
	for _, n := range names {
		out = append(out, model.Project{Org: "PSLmodels", Repo: n, Branch: "master"})
	}
	return out
}

const overviewDescriptor = `{
    "project_overview": {
        "type": "github_file",
        "start_header": "START",
        "end_header": "END",
        "source": "README.md"
    },
    "link_to_webapp": {
        "type": "html",
        "data": "<a href=\"https://compute.studio\">app</a>",
        "source": "compute.studio"
    }
}`

func TestNewUsesExplicitProjects(t *testing.T) {
	b, err := New(Config{Projects: projects("alpha", "beta")}, &stubRepos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(b.Projects()) != 2 {
		t.Errorf("got %d projects, want 2", len(b.Projects()))
	}
	if b.OutputDir() != "." {
		t.Errorf("OutputDir = %q, want \".\"", b.OutputDir())
	}
}

func TestNewReadsRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.json")
	os.WriteFile(path, []byte(`[{"org": "PSLmodels", "repo": "alpha", "branch": "master"}]`), 0644)

	b, err := New(Config{RegistryPath: path}, &stubRepos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff(projects("alpha"), b.Projects()); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}
}

func TestNewBuildOne(t *testing.T) {
	b, err := New(Config{Projects: projects("alpha", "beta", "gamma"), BuildOne: "beta"}, &stubRepos{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if diff := cmp.Diff(projects("beta"), b.Projects()); diff != "" {
		t.Errorf("projects mismatch (-want +got):\n%s", diff)
	}

	_, err = New(Config{Projects: projects("alpha", "beta", "gamma"), BuildOne: "delta"}, &stubRepos{})
	if !errors.Is(err, registry.ErrProjectNotFound) {
		t.Errorf("got %v, want ErrProjectNotFound", err)
	}
}

func TestLoadSortsCaseInsensitively(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"zeta/PSL_catalog.json":  `{}`,
		"Alpha/PSL_catalog.json": `{}`,
		"beta/PSL_catalog.json":  `{}`,
	}}
	b, err := New(Config{Projects: projects("zeta", "Alpha", "beta")}, repos)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"Alpha", "beta", "zeta"}, b.Catalog().Names()); diff != "" {
		t.Errorf("catalog order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNetworkMode(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"Tax-Calculator/PSL_catalog.json": overviewDescriptor,
		"Tax-Calculator/README.md":        "# Tax-Calculator\nSTART\nHELLO\nEND\n",
	}}
	b, err := New(Config{Projects: projects("Tax-Calculator")}, repos)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	e, ok := b.Catalog().Entry("Tax-Calculator")
	if !ok {
		t.Fatal("entry Tax-Calculator missing")
	}
	if diff := cmp.Diff([]string{"name", "project_overview", "link_to_webapp"}, e.Attributes()); diff != "" {
		t.Errorf("attribute order mismatch (-want +got):\n%s", diff)
	}

	want := map[string]model.Resolved{
		"name": {Value: model.StringPtr("Tax-Calculator"), Source: model.StringPtr("")},
		"project_overview": {
			Value:  model.StringPtr("\nHELLO\n"),
			Source: model.StringPtr("https://github.com/PSLmodels/Tax-Calculator/blob/master/README.md"),
		},
		"link_to_webapp": {
			Value:  model.StringPtr(`<a href="https://compute.studio">app</a>`),
			Source: model.StringPtr("compute.studio"),
		},
	}
	for attr, w := range want {
		got, _ := e.Get(attr)
		if diff := cmp.Diff(w, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", attr, diff)
		}
	}

	if got := b.Repos()["Tax-Calculator"]; got != "https://github.com/PSLmodels/Tax-Calculator" {
		t.Errorf("repo link = %q", got)
	}
	// one descriptor request plus one per github_file attribute
	if len(repos.requests) != 2 {
		t.Errorf("got %d requests, want 2: %v", len(repos.requests), repos.requests)
	}
}

func TestLoadEveryProjectHasName(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"alpha/PSL_catalog.json": `{}`,
		"beta/PSL_catalog.json":  `{"project_one_line": {"type": "html", "data": "<p>b</p>", "source": ""}}`,
	}}
	b, _ := New(Config{Projects: projects("alpha", "beta")}, repos)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, e := range b.Catalog().Entries() {
		r, ok := e.Get("name")
		if !ok || r.Value == nil || *r.Value != e.Name || r.Source == nil || *r.Source != "" {
			t.Errorf("%s: bad name attribute %+v", e.Name, r)
		}
	}
}

func TestLoadUnrecognizedTypeContinues(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"alpha/PSL_catalog.json": `{
            "core_maintainers": {"type": "unknown"},
            "link_to_webapp": {"type": "html", "data": "<a>x</a>", "source": "s"}
        }`,
		"beta/PSL_catalog.json": `{}`,
	}}
	b, _ := New(Config{Projects: projects("alpha", "beta")}, repos)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	e, _ := b.Catalog().Entry("alpha")
	if r, ok := e.Get("core_maintainers"); !ok || r.Value != nil || r.Source != nil {
		t.Errorf("core_maintainers = %+v, %v; want null value and source", r, ok)
	}
	if e.Value("link_to_webapp") != "<a>x</a>" {
		t.Error("attribute after the unrecognized one was not resolved")
	}
	if _, ok := b.Catalog().Entry("beta"); !ok {
		t.Error("project after the unrecognized attribute was not processed")
	}
}

func TestLoadNonStringTypeContinues(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"alpha/PSL_catalog.json": `{"a": {"type": 5}, "b": {"type": "html", "data": "<p>b</p>", "source": "s"}}`,
	}}
	b, _ := New(Config{Projects: projects("alpha")}, repos)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	e, _ := b.Catalog().Entry("alpha")
	if r, ok := e.Get("a"); !ok || r.Value != nil || r.Source != nil {
		t.Errorf("a = %+v, %v; want null value and source", r, ok)
	}
	if e.Value("b") != "<p>b</p>" || e.Source("b") != "s" {
		t.Errorf("b = %q from %q; want <p>b</p> from s", e.Value("b"), e.Source("b"))
	}
}

func TestLoadTransportErrorAborts(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"beta/PSL_catalog.json": `{}`,
	}}
	b, _ := New(Config{Projects: projects("alpha", "beta")}, repos)
	err := b.Load(context.Background())
	if err == nil || !strings.Contains(err.Error(), "alpha/PSL_catalog.json") {
		t.Fatalf("got %v, want error for alpha descriptor", err)
	}
	for _, req := range repos.requests {
		if strings.HasPrefix(req, "beta/") {
			t.Error("run continued after a transport error")
		}
	}
}

func TestLoadBadDescriptorAborts(t *testing.T) {
	repos := &stubRepos{files: map[string]string{
		"alpha/PSL_catalog.json": `not json`,
	}}
	b, _ := New(Config{Projects: projects("alpha")}, repos)
	if err := b.Load(context.Background()); !errors.Is(err, model.ErrInvalidDescriptor) {
		t.Fatalf("got %v, want ErrInvalidDescriptor", err)
	}
}

func TestReplayModeRepoLinks(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, output.CatalogFile), []byte(`{"alpha": {"name": {"source": "", "value": "alpha"}}}`), 0644)

	all := []model.Project{
		{Org: "PSLmodels", Repo: "alpha", Branch: "master"},
		{Org: "open-source-economics", Repo: "beta", Branch: "main"},
	}
	repos := &stubRepos{}
	b, _ := New(Config{Projects: all, OutputDir: dir, Develop: true}, repos)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := map[string]string{
		"alpha": "https://github.com/PSLmodels/alpha",
		"beta":  "https://github.com/open-source-economics/beta",
	}
	if diff := cmp.Diff(want, b.Repos()); diff != "" {
		t.Errorf("repo links mismatch (-want +got):\n%s", diff)
	}
	if len(repos.requests) != 0 {
		t.Errorf("develop mode made remote requests: %v", repos.requests)
	}
}

func TestReplayMissingCatalog(t *testing.T) {
	b, _ := New(Config{Projects: projects("alpha"), OutputDir: t.TempDir(), Develop: true}, &stubRepos{})
	if err := b.Load(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want os.ErrNotExist", err)
	}
}

func TestDumpThenReplayRoundTrip(t *testing.T) {
	dir := t.TempDir()
	repos := &stubRepos{files: map[string]string{
		"Tax-Calculator/PSL_catalog.json": overviewDescriptor,
		"Tax-Calculator/README.md":        "START\n<p>tax & <b>more</b></p>\nEND",
		"OG-USA/PSL_catalog.json":         `{"x": {"type": "nope"}}`,
	}}
	ps := projects("Tax-Calculator", "OG-USA")

	network, _ := New(Config{Projects: ps, OutputDir: dir}, repos)
	if err := network.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := network.DumpCatalog(filepath.Join(dir, output.CatalogFile)); err != nil {
		t.Fatalf("DumpCatalog: %v", err)
	}

	replay, _ := New(Config{Projects: ps, OutputDir: dir, Develop: true}, repos)
	if err := replay.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	opt := cmp.AllowUnexported(model.Catalog{}, model.Entry{})
	if diff := cmp.Diff(network.Catalog(), replay.Catalog(), opt); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(network.Repos(), replay.Repos()); diff != "" {
		t.Errorf("repo links mismatch (-want +got):\n%s", diff)
	}
}

func TestWritePages(t *testing.T) {
	dir := t.TempDir()
	repos := &stubRepos{files: map[string]string{"alpha/PSL_catalog.json": `{}`}}
	b, _ := New(Config{Projects: projects("alpha"), OutputDir: dir}, repos)
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r, err := output.NewRenderer("")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := b.WritePages(r); err != nil {
		t.Fatalf("WritePages: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, output.IndexFile)); err != nil {
		t.Errorf("index.html not written: %v", err)
	}
}

var _ remote.Fetcher = (*stubRepos)(nil)

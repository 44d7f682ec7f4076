package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/StinkyLord/psl-catalog-builder/internal/builder"
	"github.com/StinkyLord/psl-catalog-builder/internal/config"
	"github.com/StinkyLord/psl-catalog-builder/internal/ctxlog"
	"github.com/StinkyLord/psl-catalog-builder/internal/output"
	"github.com/StinkyLord/psl-catalog-builder/internal/remote"
)

const toolVersion = "1.0.0"

var (
	flagConfig    string
	flagRegistry  string
	flagDir       string
	flagTemplates string
	flagAPIURL    string
	flagLogLevel  string
	flagLogFormat string
	flagDevelop   bool
	flagBuildOne  string
)

var rootCmd = &cobra.Command{
	Use:   "psl-catalog-builder",
	Short: "Build the project catalog pages",
	Long: `psl-catalog-builder reads the project registry, fetches each project's
PSL_catalog.json descriptor from GitHub and collects the attributes it
describes into catalog.json, index.html and one page per project.

Attribute types:
  • github_file : text between start_header and end_header of a repository file
  • html        : HTML given inline in the descriptor

Examples:
  psl-catalog-builder --dir site
  psl-catalog-builder --develop --dir site
  psl-catalog-builder --build-one Tax-Calculator`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "YAML config file (default catalog.yaml when present)")
	pf.StringVarP(&flagRegistry, "registry", "r", "register.json", "Project registry file (JSON or YAML)")
	pf.StringVarP(&flagDir, "dir", "d", ".", "Output directory for index.html, projects/ and catalog.json")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")

	f := rootCmd.Flags()
	f.BoolVar(&flagDevelop, "develop", false,
		"Load the catalog from catalog.json in the output directory instead of\n"+
			"querying the GitHub API. Useful while working on the templates.")
	f.StringVar(&flagBuildOne, "build-one", "",
		"Only build the catalog for the named project. Helpful when adding a\n"+
			"project and tweaking the appearance of its card and page.")
	f.StringVar(&flagTemplates, "templates", "", "Directory with catalog_template.html and project_template.html")
	f.StringVar(&flagAPIURL, "api-url", "", "GitHub API base URL (default https://api.github.com/)")

	rootCmd.AddCommand(listCmd, versionCmd)
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges catalog.yaml with the flags that were set explicitly.
func loadConfig(fs *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Resolve(flagConfig)
	if err != nil {
		return config.Config{}, err
	}

	overrides := map[string]*string{
		"registry":   &cfg.Registry,
		"dir":        &cfg.OutputDir,
		"templates":  &cfg.TemplatesDir,
		"api-url":    &cfg.APIURL,
		"log-level":  &cfg.LogLevel,
		"log-format": &cfg.LogFormat,
	}
	for name, dst := range overrides {
		if f := fs.Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	ctx := ctxlog.WithLogger(cmd.Context(), logger)
	logger.Info("psl-catalog-builder", "version", toolVersion, "develop", flagDevelop)

	fetcher, err := remote.NewGitHub(cfg.APIURL, nil)
	if err != nil {
		return err
	}

	b, err := builder.New(builder.Config{
		RegistryPath: cfg.Registry,
		OutputDir:    cfg.OutputDir,
		Develop:      flagDevelop,
		BuildOne:     flagBuildOne,
	}, fetcher)
	if err != nil {
		return err
	}

	// Parse templates before any network traffic.
	renderer, err := output.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		return err
	}

	if err := b.Load(ctx); err != nil {
		return fmt.Errorf("loading catalog failed: %w", err)
	}

	if err := os.MkdirAll(b.OutputDir(), 0755); err != nil {
		return fmt.Errorf("cannot create output directory %q: %w", b.OutputDir(), err)
	}
	if err := b.WritePages(renderer); err != nil {
		return fmt.Errorf("failed to write pages: %w", err)
	}

	catalogPath := filepath.Join(b.OutputDir(), output.CatalogFile)
	if _, err := b.DumpCatalog(catalogPath); err != nil {
		return err
	}

	logger.Info("Catalog written",
		"projects", b.Catalog().Len(),
		"index", filepath.Join(b.OutputDir(), output.IndexFile),
		"catalog", catalogPath)
	return nil
}

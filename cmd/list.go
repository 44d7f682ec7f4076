package cmd

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/StinkyLord/psl-catalog-builder/internal/model"
	"github.com/StinkyLord/psl-catalog-builder/internal/registry"
)

var flagMarkdown bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the projects in the registry",
	Long: `Print the registered projects in catalog order together with the
branch the descriptor is read from and the repository URL.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Render the table as Markdown")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	projects, err := registry.Load(cfg.Registry)
	if err != nil {
		return err
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].SortKey() < projects[j].SortKey()
	})

	fmt.Fprintln(cmd.OutOrStdout(), renderProjects(projects, flagMarkdown))
	return nil
}

func renderProjects(projects []model.Project, markdown bool) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"Repo", "Org", "Branch", "URL"})
	for _, p := range projects {
		w.AppendRow(table.Row{p.Repo, p.Org, p.Branch, registry.RepoURL(p)})
	}
	w.AppendFooter(table.Row{"", "", "Total", len(projects)})

	if markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
)

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Compare with the latest release tag on GitHub")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "psl-catalog-builder v%s\n", toolVersion)
	if !flagCheck {
		return nil
	}

	res, err := latest.Check(&latest.GithubTag{
		Owner:      "StinkyLord",
		Repository: "psl-catalog-builder",
	}, toolVersion)
	if err != nil {
		return fmt.Errorf("checking latest release: %w", err)
	}
	if res.Outdated {
		fmt.Fprintf(out, "A new version is available: %s\n", res.Current)
	} else {
		fmt.Fprintln(out, "You are using the latest version.")
	}
	return nil
}

package commands

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/chaincheck/cmd"
	"github.com/thoreinstein/chaincheck/pkg/analyzer"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date and supported rule kinds of chaincheck.`,
	Run: func(c *cobra.Command, _ []string) {
		w := c.OutOrStdout()
		fmt.Fprintf(w, "chaincheck version %s\n", cmd.Version)
		fmt.Fprintf(w, "  commit:    %s\n", cmd.Commit)
		fmt.Fprintf(w, "  built:     %s\n", cmd.Date)
		fmt.Fprintf(w, "  go:        %s\n", runtime.Version())

		kinds := make([]string, 0, len(analyzer.Kinds()))
		for _, k := range analyzer.Kinds() {
			kinds = append(kinds, string(k))
		}
		fmt.Fprintf(w, "  rules:     %s\n", strings.Join(kinds, ", "))
	},
}

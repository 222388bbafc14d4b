package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/msto63/webr/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Zeigt die Versionen an",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "webr %s (%s, %s/%s)\n", version.Client, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		for _, name := range []string{"protocol", "sink", "records", "cli"} {
			fmt.Fprintf(out, "  %-9s %s\n", name, version.ComponentVersion(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// injected during compilation through ldflags
var version string
var commitHash string
var buildDate string

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of dspout",
	Long:  `All software has versions. This is dspout's.`,
	Run: func(cmd *cobra.Command, args []string) {
		printDspoutVersion()
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}

func printDspoutVersion() {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("dspout Version: %s, %s/%s, BuildDate: %s, Commit: %s\n",
		version, runtime.GOOS, runtime.GOARCH, buildDate, commitHash)
}

package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fintools",
	Short: "Developer tooling for the fintools web app",
	Long: `This command bundles the tools used to develop, check and release the
fintools web app: a small task runner, the development web server, the
project checks and the release bundler.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

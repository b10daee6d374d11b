package cmd

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aaelony/dx-fintools-fs/pkg/check"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the project's static checks",
	Long: `Verifies the parts of the project that only break at runtime: the web
templates, the assets they reference, the tasks.star file and fintools.toml.
Exits with an error if any check fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zerolog.New(NewConsoleWriter())

		projectRoot, err := os.Getwd()
		if err != nil {
			return eris.Wrap(err, "failed to retrieve the current working directory")
		}

		findings, err := check.Run(cmd.Context(), projectRoot)
		if err != nil {
			return err
		}

		for _, finding := range findings {
			logger.Error().Str("path", finding.Path).Msg(finding.Message)
		}

		if len(findings) > 0 {
			return eris.Errorf("%d check(s) failed", len(findings))
		}

		logger.Info().Msg("All checks passed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
